package proxy

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `{
  "log": {"loglevel": "warning"},
  "inbounds": [
    {
      "tag": "vless-in",
      "protocol": "vless",
      "port": 443,
      "settings": {
        "decryption": "none",
        "clients": [
          {"id": "11111111-1111-1111-1111-111111111111", "email": "first", "level": 0}
        ]
      },
      "streamSettings": {"network": "tcp"}
    },
    {
      "tag": "metrics-in",
      "protocol": "dokodemo-door",
      "port": 8080
    }
  ],
  "outbounds": [{"protocol": "freedom"}]
}`

func TestDocumentParse(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(sampleConfig), &doc))

	require.Len(t, doc.Inbounds, 2)
	assert.Equal(t, "vless-in", doc.Inbounds[0].Tag)
	assert.Equal(t, "metrics-in", doc.Inbounds[1].Tag)

	clients, err := doc.Inbounds[0].Clients()
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "first", clients[0].Email)

	assert.Nil(t, doc.InboundByTag("missing"))
	assert.Equal(t, doc.Inbounds[0], doc.InboundByTag("vless-in"))
}

// TestDocumentRoundTrip verifies fields Warden does not own survive a
// parse-serialize cycle, including unknown keys nested inside inbounds
// and existing client entries.
func TestDocumentRoundTrip(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(sampleConfig), &doc))

	out, err := json.Marshal(&doc)
	require.NoError(t, err)

	var original, reparsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(sampleConfig), &original))
	require.NoError(t, json.Unmarshal(out, &reparsed))
	assert.Equal(t, original, reparsed)
}

func TestAddClient(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(sampleConfig), &doc))

	inbound := doc.InboundByTag("vless-in")
	require.NoError(t, inbound.AddClient(Client{
		ID:    "22222222-2222-2222-2222-222222222222",
		Email: "alice#2222",
		Flow:  "xtls-rprx-vision",
	}))

	clients, err := inbound.Clients()
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "22222222-2222-2222-2222-222222222222", clients[1].ID)

	// The pre-existing entry keeps fields Warden does not model.
	out, err := json.Marshal(&doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"level":0`)
}

func TestAddClientToBareInbound(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(sampleConfig), &doc))

	// metrics-in has no settings block at all
	inbound := doc.InboundByTag("metrics-in")
	require.NoError(t, inbound.AddClient(Client{ID: "abc"}))

	clients, err := inbound.Clients()
	require.NoError(t, err)
	require.Len(t, clients, 1)
}

func TestManagerReadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0600))

	m := NewManager(path, "xray")

	doc, err := m.Read()
	require.NoError(t, err)
	require.NoError(t, doc.InboundByTag("vless-in").AddClient(Client{ID: "new-id"}))
	require.NoError(t, m.Write(doc))

	reread, err := m.Read()
	require.NoError(t, err)
	clients, err := reread.InboundByTag("vless-in").Clients()
	require.NoError(t, err)
	assert.Len(t, clients, 2)
}

func TestManagerReadMissingFile(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "absent.json"), "xray")
	_, err := m.Read()
	assert.Error(t, err)
}

func TestConnectionLink(t *testing.T) {
	params := LinkParams{
		Host:      "vpn.example.com",
		Port:      443,
		Flow:      "xtls-rprx-vision",
		Security:  "reality",
		SNI:       "cdn.example.com",
		PublicKey: "pubkey123",
		ShortID:   "ab12",
		Name:      "warden",
	}

	link := ConnectionLink(params, "uuid-xyz", "alice")

	assert.True(t, len(link) > 0)
	assert.Contains(t, link, "vless://uuid-xyz@vpn.example.com:443?")
	assert.Contains(t, link, "security=reality")
	assert.Contains(t, link, "flow=xtls-rprx-vision")
	assert.Contains(t, link, "sni=cdn.example.com")
	assert.Contains(t, link, "pbk=pubkey123")
	assert.Contains(t, link, "sid=ab12")
	assert.Contains(t, link, "#warden-alice")
}

func TestConnectionLinkMinimal(t *testing.T) {
	link := ConnectionLink(LinkParams{Host: "h", Port: 1, Name: "n"}, "id", "")

	assert.Equal(t, "vless://id@h:1?type=tcp#n", link)
}
