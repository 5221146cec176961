package proxy

import (
	"fmt"
	"net/url"
)

// LinkParams holds the server-side connection parameters templated
// into issued credential links.
type LinkParams struct {
	Host      string
	Port      int
	Flow      string
	Security  string
	SNI       string
	PublicKey string
	ShortID   string
	Name      string
}

// ConnectionLink builds the vless:// connection string for a freshly
// issued client identifier. Empty transport parameters are omitted.
func ConnectionLink(p LinkParams, clientID, label string) string {
	query := url.Values{}
	query.Set("type", "tcp")
	if p.Security != "" {
		query.Set("security", p.Security)
	}
	if p.Flow != "" {
		query.Set("flow", p.Flow)
	}
	if p.SNI != "" {
		query.Set("sni", p.SNI)
	}
	if p.PublicKey != "" {
		query.Set("pbk", p.PublicKey)
	}
	if p.ShortID != "" {
		query.Set("sid", p.ShortID)
	}

	fragment := p.Name
	if label != "" {
		fragment = fmt.Sprintf("%s-%s", p.Name, label)
	}

	return fmt.Sprintf("vless://%s@%s:%d?%s#%s",
		clientID, p.Host, p.Port, query.Encode(), url.PathEscape(fragment))
}
