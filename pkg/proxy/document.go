package proxy

import (
	"encoding/json"
	"fmt"
)

// Document is the proxy server's configuration tree. Warden only
// understands the inbound list and each inbound's client allow-list;
// every other field is carried through untouched so a read-modify-write
// cycle round-trips the parts it does not own.
type Document struct {
	fields   map[string]json.RawMessage
	Inbounds []*Inbound
}

// Inbound is one inbound endpoint definition
type Inbound struct {
	fields   map[string]json.RawMessage
	Tag      string
	Settings *InboundSettings
}

// InboundSettings holds the client allow-list of an inbound. Existing
// client entries stay as raw JSON; only appended entries are typed.
type InboundSettings struct {
	fields  map[string]json.RawMessage
	Clients []json.RawMessage
}

// Client is the entry Warden appends to an inbound's allow-list
type Client struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Flow  string `json:"flow,omitempty"`
}

func (d *Document) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &d.fields); err != nil {
		return err
	}
	if raw, ok := d.fields["inbounds"]; ok {
		if err := json.Unmarshal(raw, &d.Inbounds); err != nil {
			return fmt.Errorf("failed to parse inbounds: %w", err)
		}
	}
	return nil
}

func (d *Document) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(d.fields)+1)
	for k, v := range d.fields {
		fields[k] = v
	}
	if d.Inbounds != nil {
		raw, err := json.Marshal(d.Inbounds)
		if err != nil {
			return nil, err
		}
		fields["inbounds"] = raw
	}
	return json.Marshal(fields)
}

func (i *Inbound) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &i.fields); err != nil {
		return err
	}
	if raw, ok := i.fields["tag"]; ok {
		if err := json.Unmarshal(raw, &i.Tag); err != nil {
			return fmt.Errorf("failed to parse inbound tag: %w", err)
		}
	}
	if raw, ok := i.fields["settings"]; ok {
		if err := json.Unmarshal(raw, &i.Settings); err != nil {
			return fmt.Errorf("failed to parse inbound settings: %w", err)
		}
	}
	return nil
}

func (i *Inbound) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(i.fields)+1)
	for k, v := range i.fields {
		fields[k] = v
	}
	if i.Settings != nil {
		raw, err := json.Marshal(i.Settings)
		if err != nil {
			return nil, err
		}
		fields["settings"] = raw
	}
	return json.Marshal(fields)
}

func (s *InboundSettings) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &s.fields); err != nil {
		return err
	}
	if raw, ok := s.fields["clients"]; ok {
		if err := json.Unmarshal(raw, &s.Clients); err != nil {
			return fmt.Errorf("failed to parse clients: %w", err)
		}
	}
	return nil
}

func (s *InboundSettings) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(s.fields)+1)
	for k, v := range s.fields {
		fields[k] = v
	}
	if s.Clients != nil {
		raw, err := json.Marshal(s.Clients)
		if err != nil {
			return nil, err
		}
		fields["clients"] = raw
	}
	return json.Marshal(fields)
}

// InboundByTag returns the inbound with the given tag, or nil
func (d *Document) InboundByTag(tag string) *Inbound {
	for _, inbound := range d.Inbounds {
		if inbound.Tag == tag {
			return inbound
		}
	}
	return nil
}

// AddClient appends a client entry to the inbound's allow-list
func (i *Inbound) AddClient(c Client) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if i.Settings == nil {
		i.Settings = &InboundSettings{}
	}
	if i.Settings.Clients == nil {
		i.Settings.Clients = []json.RawMessage{}
	}
	i.Settings.Clients = append(i.Settings.Clients, raw)
	return nil
}

// Clients decodes the inbound's allow-list entries
func (i *Inbound) Clients() ([]Client, error) {
	if i.Settings == nil {
		return nil, nil
	}
	clients := make([]Client, 0, len(i.Settings.Clients))
	for _, raw := range i.Settings.Clients {
		var c Client
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, nil
}
