package alert

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wardenhq/warden/pkg/log"
	"github.com/wardenhq/warden/pkg/metrics"
)

// Notifier delivers alert text to a chat
type Notifier interface {
	SendText(chatID int64, text string) error
}

// OperatorResolver reports the bound operator chat, if any
type OperatorResolver interface {
	Resolve() (int64, bool)
}

// Thresholds holds the alert trigger levels
type Thresholds struct {
	CPUPct  float64
	MemPct  float64
	NetMbps float64
}

// Policy evaluates samples against thresholds and notifies the bound
// operator, rate-limited by a cooldown. The cooldown clock advances
// only after a successful send, so delivery failures do not suppress
// the next attempt.
type Policy struct {
	thresholds Thresholds
	cooldown   time.Duration
	resolver   OperatorResolver
	notifier   Notifier
	logger     zerolog.Logger

	mu       sync.Mutex
	lastSent time.Time
	now      func() time.Time
}

// NewPolicy creates an alerting policy
func NewPolicy(thresholds Thresholds, cooldown time.Duration, resolver OperatorResolver, notifier Notifier) *Policy {
	return &Policy{
		thresholds: thresholds,
		cooldown:   cooldown,
		resolver:   resolver,
		notifier:   notifier,
		logger:     log.WithComponent("alert"),
		now:        time.Now,
	}
}

// Evaluate checks the latest sample values and sends an alert when any
// threshold is met or exceeded. Safe for concurrent use.
func (p *Policy) Evaluate(cpuPct, memPct, inBps, outBps float64) {
	inMbps := bpsToMbps(inBps)
	outMbps := bpsToMbps(outBps)

	highCPU := cpuPct >= p.thresholds.CPUPct
	highMem := memPct >= p.thresholds.MemPct
	highNet := inMbps >= p.thresholds.NetMbps || outMbps >= p.thresholds.NetMbps

	if !highCPU && !highMem && !highNet {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if !p.lastSent.IsZero() && now.Sub(p.lastSent) < p.cooldown {
		return
	}

	chatID, bound := p.resolver.Resolve()
	if !bound {
		// Expected before first authorization
		return
	}

	lines := []string{"⚠️ Alert thresholds exceeded:"}
	if highCPU {
		lines = append(lines, fmt.Sprintf("CPU: %.1f%% ≥ %.1f%%", cpuPct, p.thresholds.CPUPct))
	}
	if highMem {
		lines = append(lines, fmt.Sprintf("MEM: %.1f%% ≥ %.1f%%", memPct, p.thresholds.MemPct))
	}
	if highNet {
		lines = append(lines, fmt.Sprintf("NET: IN %.1f Mbps, OUT %.1f Mbps ≥ %.1f Mbps",
			inMbps, outMbps, p.thresholds.NetMbps))
	}

	if err := p.notifier.SendText(chatID, strings.Join(lines, "\n")); err != nil {
		// Leave lastSent untouched so the next raise retries
		p.logger.Warn().Err(err).Msg("failed to deliver alert")
		return
	}

	p.lastSent = now
	metrics.AlertsSentTotal.Inc()
}

func bpsToMbps(bps float64) float64 {
	return bps * 8 / 1e6
}
