package vpn

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds the peer status query
const DefaultTimeout = 20 * time.Second

// Inspector queries WireGuard peer status from the VPN container
type Inspector struct {
	container string
	timeout   time.Duration
}

// NewInspector creates an Inspector for the named container
func NewInspector(container string) *Inspector {
	return &Inspector{
		container: container,
		timeout:   DefaultTimeout,
	}
}

// WithTimeout overrides the query bound
func (i *Inspector) WithTimeout(timeout time.Duration) *Inspector {
	i.timeout = timeout
	return i
}

// Peers runs `wg show` inside the VPN container and returns its raw
// output. Non-zero exit or empty output is a failure.
func (i *Inspector) Peers(ctx context.Context) (string, error) {
	execCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "docker", "exec", i.container, "wg", "show")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return "", fmt.Errorf("failed to query peers: %w: %s", err, stderr.String())
		}
		return "", fmt.Errorf("failed to query peers: %w", err)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", fmt.Errorf("peer query returned no output")
	}
	return out, nil
}
