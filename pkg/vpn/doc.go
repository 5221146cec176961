// Package vpn queries WireGuard peer status from the VPN container
// under a bounded context.
package vpn
