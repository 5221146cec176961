package host

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
)

// NetCounters holds cumulative network byte counters across all
// interfaces.
type NetCounters struct {
	BytesSent uint64
	BytesRecv uint64
}

// CounterDelta returns after minus before in float form. Kernel
// counters reset when an interface bounces or the value wraps; a
// negative delta is clamped to zero instead of underflowing.
func CounterDelta(before, after uint64) float64 {
	if after < before {
		return 0
	}
	return float64(after - before)
}

// Provider exposes the host metrics Warden samples. The concrete
// implementation is gopsutil; tests substitute fakes.
type Provider interface {
	// CPUPercent returns utilization since the previous call (first
	// call may report zero).
	CPUPercent() (float64, error)
	MemPercent() (float64, error)
	DiskUsedPercent(path string) (float64, error)
	NetCounters() (NetCounters, error)
	BootTime() (time.Time, error)
}

// SystemProvider implements Provider with gopsutil
type SystemProvider struct{}

// NewSystemProvider returns the gopsutil-backed provider
func NewSystemProvider() *SystemProvider {
	return &SystemProvider{}
}

func (p *SystemProvider) CPUPercent() (float64, error) {
	pcts, err := cpu.Percent(0, false)
	if err != nil {
		return 0, fmt.Errorf("failed to read cpu percent: %w", err)
	}
	if len(pcts) == 0 {
		return 0, fmt.Errorf("no cpu percent reported")
	}
	return pcts[0], nil
}

func (p *SystemProvider) MemPercent() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("failed to read memory stats: %w", err)
	}
	return vm.UsedPercent, nil
}

func (p *SystemProvider) DiskUsedPercent(path string) (float64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read disk usage for %s: %w", path, err)
	}
	return usage.UsedPercent, nil
}

func (p *SystemProvider) NetCounters() (NetCounters, error) {
	counters, err := net.IOCounters(false)
	if err != nil {
		return NetCounters{}, fmt.Errorf("failed to read net counters: %w", err)
	}
	if len(counters) == 0 {
		return NetCounters{}, fmt.Errorf("no net counters reported")
	}
	return NetCounters{
		BytesSent: counters[0].BytesSent,
		BytesRecv: counters[0].BytesRecv,
	}, nil
}

func (p *SystemProvider) BootTime() (time.Time, error) {
	boot, err := host.BootTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read boot time: %w", err)
	}
	return time.Unix(int64(boot), 0), nil
}
