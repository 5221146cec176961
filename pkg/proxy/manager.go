package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// DefaultRestartTimeout bounds the container restart invocation
const DefaultRestartTimeout = 30 * time.Second

// Manager provides read-modify-write access to the proxy's live
// configuration file plus the restart trigger. The file has no native
// locking; callers must serialize the whole read-write-restart
// sequence themselves.
type Manager struct {
	path           string
	container      string
	restartTimeout time.Duration
}

// NewManager creates a Manager for the config file at path and the
// named proxy container.
func NewManager(path, container string) *Manager {
	return &Manager{
		path:           path,
		container:      container,
		restartTimeout: DefaultRestartTimeout,
	}
}

// WithRestartTimeout overrides the restart invocation bound
func (m *Manager) WithRestartTimeout(timeout time.Duration) *Manager {
	m.restartTimeout = timeout
	return m
}

// Read loads and parses the full configuration document
func (m *Manager) Read() (*Document, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read proxy config: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse proxy config: %w", err)
	}
	return &doc, nil
}

// Write serializes the full document back to the config file
func (m *Manager) Write(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize proxy config: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write proxy config: %w", err)
	}
	return nil
}

// Restart restarts the proxy container so it picks up the rewritten
// config. The invocation is bounded; expiry is a failure, not retried.
func (m *Manager) Restart(ctx context.Context) error {
	execCtx, cancel := context.WithTimeout(ctx, m.restartTimeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "docker", "restart", m.container)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("failed to restart %s: %w: %s", m.container, err, stderr.String())
		}
		return fmt.Errorf("failed to restart %s: %w", m.container, err)
	}
	return nil
}
