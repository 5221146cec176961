package sampler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wardenhq/warden/pkg/alert"
	"github.com/wardenhq/warden/pkg/host"
	"github.com/wardenhq/warden/pkg/log"
	"github.com/wardenhq/warden/pkg/metrics"
	"github.com/wardenhq/warden/pkg/storage"
	"github.com/wardenhq/warden/pkg/types"
)

// Sampler periodically captures a host snapshot, appends it to the
// metrics log and hands the values to the alert policy. Each tick is
// isolated: one failed tick is logged and skipped, the timer keeps
// running.
type Sampler struct {
	store    storage.Store
	provider host.Provider
	policy   *alert.Policy
	logger   zerolog.Logger

	interval time.Duration
	// Net throughput measurement window. Independent of the sampling
	// interval: the tick reads counters, sleeps the window, reads
	// again and divides the byte delta by the elapsed time.
	window   time.Duration
	diskPath string

	stopCh chan struct{}
	doneCh chan struct{}

	sleep func(d time.Duration)
	now   func() time.Time
}

// New creates a Sampler
func New(store storage.Store, provider host.Provider, policy *alert.Policy, interval, window time.Duration, diskPath string) *Sampler {
	return &Sampler{
		store:    store,
		provider: provider,
		policy:   policy,
		logger:   log.WithComponent("sampler"),
		interval: interval,
		window:   window,
		diskPath: diskPath,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		sleep:    time.Sleep,
		now:      time.Now,
	}
}

// Start begins the sampling loop
func (s *Sampler) Start() {
	go s.run()
}

// Stop stops the sampling loop and waits for the current tick
func (s *Sampler) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *Sampler) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.tick(); err != nil {
				metrics.SampleTicksTotal.WithLabelValues("error").Inc()
				s.logger.Error().Err(err).Msg("sample skipped")
			} else {
				metrics.SampleTicksTotal.WithLabelValues("ok").Inc()
			}
		case <-s.stopCh:
			return
		}
	}
}

// tick captures and persists one sample. Any failure, including the
// net measurement window, skips the whole sample: rows are never
// partially written.
func (s *Sampler) tick() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in sampling tick: %v", r)
		}
	}()

	cpuPct, err := s.provider.CPUPercent()
	if err != nil {
		return err
	}
	memPct, err := s.provider.MemPercent()
	if err != nil {
		return err
	}
	diskPct, err := s.provider.DiskUsedPercent(s.diskPath)
	if err != nil {
		return err
	}

	inBps, outBps, err := s.measureNet()
	if err != nil {
		return err
	}

	sample := types.Sample{
		Timestamp:   s.now().Unix(),
		CPUPct:      cpuPct,
		MemPct:      memPct,
		NetInBps:    inBps,
		NetOutBps:   outBps,
		DiskUsedPct: diskPct,
	}
	if err := s.store.AppendSample(sample); err != nil {
		return fmt.Errorf("failed to append sample: %w", err)
	}

	metrics.RecordSample(cpuPct, memPct, diskPct, inBps, outBps)
	s.policy.Evaluate(cpuPct, memPct, inBps, outBps)
	return nil
}

// measureNet samples the cumulative counters across the measurement
// window and converts the delta to bytes/sec.
func (s *Sampler) measureNet() (inBps, outBps float64, err error) {
	before, err := s.provider.NetCounters()
	if err != nil {
		return 0, 0, err
	}
	start := s.now()
	s.sleep(s.window)
	after, err := s.provider.NetCounters()
	if err != nil {
		return 0, 0, err
	}

	elapsed := s.now().Sub(start).Seconds()
	if elapsed <= 0 {
		elapsed = s.window.Seconds()
	}

	inBps = host.CounterDelta(before.BytesRecv, after.BytesRecv) / elapsed
	outBps = host.CounterDelta(before.BytesSent, after.BytesSent) / elapsed
	return inBps, outBps, nil
}
