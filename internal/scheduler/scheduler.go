// Package scheduler drives the periodic refresh loop: a fast, user-tunable
// cadence that resamples every metric source and recomputes the status
// indicator, and a fixed 60-second cadence that records one usage-history
// point. The fast interval is re-armed live whenever the settings store
// reports a change.
package scheduler

import (
	"sync"
	"time"

	"github.com/sysmon-pro/sysmon/internal/log"
)

const slowInterval = 60 * time.Second

// minFastInterval floors the refresh cadence the same way the dashboard
// caps manual interval adjustments.
const minFastInterval = 100 * time.Millisecond

// Sampler refreshes and exposes the current CPU/memory/disk usage. Refresh
// failures leave the previous values in place; readers get whatever is
// last known.
type Sampler interface {
	RefreshMetrics()
	CurrentCPU() float64
	CurrentMemory() float64
	CurrentDisk() float64
}

// Refresher is the no-argument, best-effort refresh contract shared by the
// network, battery and temperature sources.
type Refresher interface {
	Refresh()
}

// AlertEvaluator checks the freshly refreshed usage values against the
// configured thresholds. Side effects (notifications) happen inside; the
// scheduler does not consume the result.
type AlertEvaluator interface {
	Evaluate(cpu, mem, disk float64)
}

// HistoryRecorder persists one usage point per slow tick.
type HistoryRecorder interface {
	Record(cpu, mem float64)
}

// StatusSink receives the recomputed tier after every fast tick. Apply may
// be called after Stop for ticks that were already in flight; sinks must
// tolerate that and become a no-op once their owner is gone.
type StatusSink interface {
	Apply(t Tier)
}

// ConfigSource exposes the refresh interval and a change notification that
// fires on any settings mutation, not only the interval.
type ConfigSource interface {
	FastInterval() time.Duration
	Subscribe() <-chan struct{}
	Unsubscribe(<-chan struct{})
}

// Collaborators bundles everything a Scheduler drives.
type Collaborators struct {
	Sampler     Sampler
	Network     Refresher
	Battery     Refresher
	Temperature Refresher
	Alerts      AlertEvaluator
	History     HistoryRecorder
	Status      StatusSink
}

// Scheduler owns the two tickers. States: stopped (initial), running, and
// back to stopped after Stop. Start and Stop are both safe to call
// redundantly.
type Scheduler struct {
	clock Clock
	cfg   ConfigSource
	c     Collaborators

	mu           sync.Mutex
	running      bool
	fast         Ticker
	slow         Ticker
	fastInterval time.Duration
	cfgCh        <-chan struct{}
	done         chan struct{}
}

func New(clock Clock, cfg ConfigSource, c Collaborators) *Scheduler {
	return &Scheduler{clock: clock, cfg: cfg, c: c}
}

// Start arms both tickers and performs one immediate fast tick plus one
// immediate history point, so consumers have data before the first period
// elapses. No-op when already running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	fastInterval := clampInterval(s.cfg.FastInterval())
	s.fastInterval = fastInterval
	s.fast = s.clock.NewTicker(fastInterval)
	s.slow = s.clock.NewTicker(slowInterval)
	s.cfgCh = s.cfg.Subscribe()
	s.done = make(chan struct{})
	s.running = true
	done := s.done
	s.mu.Unlock()

	log.Debug().Dur("fast", fastInterval).Dur("slow", slowInterval).Msg("scheduler started")

	s.c.History.Record(s.c.Sampler.CurrentCPU(), s.c.Sampler.CurrentMemory())
	go s.fastTick()
	go s.run(done)
}

func (s *Scheduler) run(done chan struct{}) {
	slowC := s.slow.C()
	for {
		s.mu.Lock()
		fastC := s.fast.C()
		cfgCh := s.cfgCh
		s.mu.Unlock()

		select {
		case <-done:
			return
		case <-fastC:
			go s.fastTick()
		case <-slowC:
			go s.slowTick()
		case <-cfgCh:
			s.reconfigure()
		}
	}
}

// fastTick runs one full refresh cycle. Steps run strictly in sequence for
// a given tick; overlapping ticks are not serialized against each other,
// so a late tick never delays the next one.
func (s *Scheduler) fastTick() {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("refresh cycle panicked")
		}
	}()

	s.c.Sampler.RefreshMetrics()
	s.c.Network.Refresh()
	s.c.Battery.Refresh()
	s.c.Temperature.Refresh()

	cpu := s.c.Sampler.CurrentCPU()
	mem := s.c.Sampler.CurrentMemory()
	disk := s.c.Sampler.CurrentDisk()
	s.c.Alerts.Evaluate(cpu, mem, disk)
	s.c.Status.Apply(TierFor(cpu, mem, disk))
}

// slowTick records the sampler's last-updated values. It does not
// resample; the fast cadence keeps those values fresh enough.
func (s *Scheduler) slowTick() {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("history record panicked")
		}
	}()
	s.c.History.Record(s.c.Sampler.CurrentCPU(), s.c.Sampler.CurrentMemory())
}

// reconfigure re-reads the fast interval and, only if it changed, swaps the
// fast ticker. The slow ticker is never touched here.
func (s *Scheduler) reconfigure() {
	next := clampInterval(s.cfg.FastInterval())

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || next == s.fastInterval {
		return
	}
	s.fast.Stop()
	s.fast = s.clock.NewTicker(next)
	s.fastInterval = next
	log.Info().Dur("interval", next).Msg("refresh interval changed")
}

// Stop cancels both tickers and the config subscription. In-flight ticks
// run to completion; their sink applications are the sink's problem.
// Calling Stop when already stopped is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.done)
	s.fast.Stop()
	s.slow.Stop()
	s.cfg.Unsubscribe(s.cfgCh)
	s.running = false
	log.Debug().Msg("scheduler stopped")
}

// Running reports the scheduler state.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func clampInterval(d time.Duration) time.Duration {
	if d < minFastInterval {
		return minFastInterval
	}
	return d
}
