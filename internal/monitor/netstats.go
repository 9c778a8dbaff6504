package monitor

import (
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/net"

	"github.com/sysmon-pro/sysmon/internal/log"
)

// NetStats turns the kernel's cumulative network/disk counters into
// per-second rates by diffing against the previous refresh.
type NetStats struct {
	mu            sync.Mutex
	current       NetDiskMetrics
	lastNetStats  net.IOCountersStat
	lastDiskStats disk.IOCountersStat
	lastTime      time.Time
}

func NewNetStats() *NetStats {
	return &NetStats{}
}

// Refresh recomputes the rates. The first call only primes the counters;
// rates stay zero until the second refresh.
func (n *NetStats) Refresh() {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(n.lastTime).Seconds()
	if elapsed <= 0 {
		elapsed = 1
	}
	primed := !n.lastTime.IsZero()

	var metrics NetDiskMetrics
	netStats, err := net.IOCounters(false)
	if err == nil && len(netStats) > 0 {
		current := netStats[0]
		if primed {
			metrics.InBytesPerSec = float64(current.BytesRecv-n.lastNetStats.BytesRecv) / elapsed / 1000
			metrics.OutBytesPerSec = float64(current.BytesSent-n.lastNetStats.BytesSent) / elapsed / 1000
			metrics.InPacketsPerSec = float64(current.PacketsRecv-n.lastNetStats.PacketsRecv) / elapsed
			metrics.OutPacketsPerSec = float64(current.PacketsSent-n.lastNetStats.PacketsSent) / elapsed
		}
		n.lastNetStats = current
	} else if err != nil {
		log.Debug().Err(err).Msg("network counters failed")
		metrics = n.current
	}

	diskStats, err := disk.IOCounters()
	if err == nil {
		var totalReadBytes, totalWriteBytes, totalReadOps, totalWriteOps uint64
		for _, d := range diskStats {
			totalReadBytes += d.ReadBytes
			totalWriteBytes += d.WriteBytes
			totalReadOps += d.ReadCount
			totalWriteOps += d.WriteCount
		}
		if primed {
			metrics.ReadKBytesPerSec = float64(totalReadBytes-n.lastDiskStats.ReadBytes) / elapsed / 1000
			metrics.WriteKBytesPerSec = float64(totalWriteBytes-n.lastDiskStats.WriteBytes) / elapsed / 1000
			metrics.ReadOpsPerSec = float64(totalReadOps-n.lastDiskStats.ReadCount) / elapsed
			metrics.WriteOpsPerSec = float64(totalWriteOps-n.lastDiskStats.WriteCount) / elapsed
		}
		n.lastDiskStats = disk.IOCountersStat{
			ReadBytes:  totalReadBytes,
			WriteBytes: totalWriteBytes,
			ReadCount:  totalReadOps,
			WriteCount: totalWriteOps,
		}
	} else {
		log.Debug().Err(err).Msg("disk counters failed")
	}

	n.lastTime = now
	n.current = metrics
}

// Current returns the last computed rates.
func (n *NetStats) Current() NetDiskMetrics {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}
