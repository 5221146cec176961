package alert

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeResolver struct {
	chatID int64
	bound  bool
}

func (f *fakeResolver) Resolve() (int64, bool) { return f.chatID, f.bound }

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) SendText(chatID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, text)
	return nil
}

func newTestPolicy(notifier *fakeNotifier, start time.Time) (*Policy, *time.Time) {
	clock := start
	p := NewPolicy(
		Thresholds{CPUPct: 85, MemPct: 85, NetMbps: 200},
		10*time.Minute,
		&fakeResolver{chatID: 42, bound: true},
		notifier,
	)
	p.now = func() time.Time { return clock }
	return p, &clock
}

func TestEvaluateBelowThresholds(t *testing.T) {
	notifier := &fakeNotifier{}
	p, _ := newTestPolicy(notifier, time.Unix(1000, 0))

	p.Evaluate(50, 50, 0, 0)
	assert.Empty(t, notifier.sent)
}

func TestEvaluateTriggers(t *testing.T) {
	tests := []struct {
		name     string
		cpu, mem float64
		in, out  float64 // bytes/sec
		contains []string
	}{
		{"cpu only", 90, 10, 0, 0, []string{"CPU: 90.0% ≥ 85.0%"}},
		{"cpu at threshold", 85, 10, 0, 0, []string{"CPU: 85.0%"}},
		{"mem only", 10, 91.5, 0, 0, []string{"MEM: 91.5% ≥ 85.0%"}},
		// 30 MB/s out = 240 Mbps
		{"net out only", 10, 10, 0, 30e6, []string{"NET: IN 0.0 Mbps, OUT 240.0 Mbps"}},
		{"all three", 90, 90, 30e6, 0, []string{"CPU:", "MEM:", "NET:"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &fakeNotifier{}
			p, _ := newTestPolicy(notifier, time.Unix(1000, 0))

			p.Evaluate(tt.cpu, tt.mem, tt.in, tt.out)

			assert.Len(t, notifier.sent, 1)
			for _, want := range tt.contains {
				assert.Contains(t, notifier.sent[0], want)
			}
		})
	}
}

// TestCooldown walks the canonical sequence: first raise sends, a
// raise one minute later is suppressed, a raise past the cooldown
// sends again.
func TestCooldown(t *testing.T) {
	notifier := &fakeNotifier{}
	p, clock := newTestPolicy(notifier, time.Unix(1000, 0))

	p.Evaluate(90, 0, 0, 0)
	assert.Len(t, notifier.sent, 1)

	*clock = clock.Add(1 * time.Minute)
	p.Evaluate(90, 0, 0, 0)
	assert.Len(t, notifier.sent, 1, "raise inside cooldown must be suppressed")

	*clock = clock.Add(10 * time.Minute)
	p.Evaluate(90, 0, 0, 0)
	assert.Len(t, notifier.sent, 2)
}

// TestSendFailureKeepsCooldownClock verifies a failed delivery does not
// start the cooldown: the very next raise retries immediately.
func TestSendFailureKeepsCooldownClock(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("telegram down")}
	p, _ := newTestPolicy(notifier, time.Unix(1000, 0))

	p.Evaluate(90, 0, 0, 0)
	assert.Empty(t, notifier.sent)

	notifier.err = nil
	p.Evaluate(90, 0, 0, 0)
	assert.Len(t, notifier.sent, 1)
}

func TestNoOperatorBound(t *testing.T) {
	notifier := &fakeNotifier{}
	p, _ := newTestPolicy(notifier, time.Unix(1000, 0))
	p.resolver = &fakeResolver{bound: false}

	// Silently skipped, and the cooldown clock must not start.
	p.Evaluate(90, 0, 0, 0)
	assert.Empty(t, notifier.sent)

	p.resolver = &fakeResolver{chatID: 42, bound: true}
	p.Evaluate(90, 0, 0, 0)
	assert.Len(t, notifier.sent, 1)
}
