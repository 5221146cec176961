package speedtest

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds the benchmark invocation
const DefaultTimeout = 60 * time.Second

// Result holds the parsed benchmark figures. Nil means the field was
// missing from the tool's output; it is tolerated and omitted from
// replies.
type Result struct {
	DownloadMbps *float64
	UploadMbps   *float64
	PingMs       *float64
}

// Runner executes the external speedtest binary
type Runner struct {
	serverID string
	timeout  time.Duration
}

// NewRunner creates a Runner; serverID may be empty for automatic
// server selection.
func NewRunner(serverID string) *Runner {
	return &Runner{
		serverID: serverID,
		timeout:  DefaultTimeout,
	}
}

// WithTimeout overrides the invocation bound
func (r *Runner) WithTimeout(timeout time.Duration) *Runner {
	r.timeout = timeout
	return r
}

// Run executes the benchmark and parses its output
func (r *Runner) Run(ctx context.Context) (Result, error) {
	execCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := []string{"--simple", "--timeout", "15"}
	if r.serverID != "" {
		args = append(args, "--server", r.serverID)
	}
	cmd := exec.CommandContext(execCtx, "speedtest-cli", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return Result{}, fmt.Errorf("speedtest failed: %w: %s", err, stderr.String())
		}
		return Result{}, fmt.Errorf("speedtest failed: %w", err)
	}

	return Parse(stdout.String()), nil
}

// Parse scans the tool's --simple output for the three labeled fields.
// Lines look like "Download: 93.52 Mbit/s"; unrecognized or malformed
// lines are skipped.
func Parse(output string) Result {
	var result Result
	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.HasPrefix(line, "Download"):
			result.DownloadMbps = parseValue(line)
		case strings.HasPrefix(line, "Upload"):
			result.UploadMbps = parseValue(line)
		case strings.HasPrefix(line, "Ping"):
			result.PingMs = parseValue(line)
		}
	}
	return result
}

// parseValue extracts the first numeric token after the colon
func parseValue(line string) *float64 {
	_, rest, ok := strings.Cut(line, ":")
	if !ok {
		return nil
	}
	tokens := strings.Fields(rest)
	if len(tokens) == 0 {
		return nil
	}
	value, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		return nil
	}
	return &value
}
