// Package monitor implements the metric sources the refresh loop drives:
// CPU/memory/disk usage, network and disk I/O rates, battery state and
// temperature readings. Every refresh is best-effort; a failed read keeps
// the previous value so the display stays approximately current.
package monitor

import (
	"sync"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/sysmon-pro/sysmon/internal/log"
)

// Sampler holds the last-known usage percentages. RefreshMetrics is called
// from the fast refresh cycle; the current values are readable at any time
// and from any goroutine.
type Sampler struct {
	mu       sync.Mutex
	snapshot Snapshot
	memory   MemoryMetrics
	diskPath string
}

func NewSampler() *Sampler {
	return &Sampler{diskPath: "/"}
}

// RefreshMetrics resamples CPU, memory and disk usage. Each source that
// fails keeps its stale value for this cycle.
func (s *Sampler) RefreshMetrics() {
	var snap Snapshot
	var memStats MemoryMetrics
	haveCPU, haveMem, haveDisk := false, false, false

	// Non-blocking sample: percentage since the previous call.
	if percentages, err := cpu.Percent(0, false); err == nil && len(percentages) > 0 {
		snap.CPUUsagePercent = percentages[0]
		haveCPU = true
	} else if err != nil {
		log.Debug().Err(err).Msg("cpu sample failed")
	}

	if v, err := mem.VirtualMemory(); err == nil {
		snap.MemoryUsagePercent = v.UsedPercent
		memStats.Total = v.Total
		memStats.Used = v.Used
		memStats.Available = v.Available
		haveMem = true
	} else {
		log.Debug().Err(err).Msg("memory sample failed")
	}
	if sw, err := mem.SwapMemory(); err == nil {
		memStats.SwapTotal = sw.Total
		memStats.SwapUsed = sw.Used
	}

	if usage, err := disk.Usage(s.diskPath); err == nil {
		snap.DiskUsagePercent = usage.UsedPercent
		haveDisk = true
	} else {
		log.Debug().Err(err).Msg("disk sample failed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if haveCPU {
		s.snapshot.CPUUsagePercent = snap.CPUUsagePercent
	}
	if haveMem {
		s.snapshot.MemoryUsagePercent = snap.MemoryUsagePercent
		s.memory = memStats
	}
	if haveDisk {
		s.snapshot.DiskUsagePercent = snap.DiskUsagePercent
	}
}

func (s *Sampler) CurrentCPU() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.CPUUsagePercent
}

func (s *Sampler) CurrentMemory() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.MemoryUsagePercent
}

func (s *Sampler) CurrentDisk() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.DiskUsagePercent
}

// Current returns the full last-known snapshot.
func (s *Sampler) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Memory returns the last-known absolute memory figures.
func (s *Sampler) Memory() MemoryMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memory
}
