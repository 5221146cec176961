/*
Package proxy mediates access to the VPN proxy's live configuration.

The config is an external JSON document Warden does not own: it is read
in full, exactly one client entry is appended to an inbound's
allow-list, the document is written back in full, and the proxy
container is restarted under a bounded context. Unknown fields at every
level are preserved as raw JSON so the round trip never drops
configuration the proxy relies on.

The package also templates issued client identifiers into vless://
connection links.
*/
package proxy
