// Package speedtest runs the external speedtest-cli benchmark under a
// bounded context and parses its labeled output lines.
package speedtest
