package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeTicker struct {
	ch       chan time.Time
	interval time.Duration

	mu      sync.Mutex
	stopped bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeTicker) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// tick blocks until the scheduler's run loop receives the fire.
func (f *fakeTicker) tick() {
	f.ch <- time.Now()
}

type fakeClock struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (f *fakeClock) NewTicker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	ft := &fakeTicker{ch: make(chan time.Time), interval: d}
	f.tickers = append(f.tickers, ft)
	return ft
}

func (f *fakeClock) created() []*fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*fakeTicker, len(f.tickers))
	copy(out, f.tickers)
	return out
}

type fakeConfig struct {
	mu       sync.Mutex
	interval time.Duration
	ch       chan struct{}
	unsubbed bool
}

func newFakeConfig(interval time.Duration) *fakeConfig {
	return &fakeConfig{interval: interval, ch: make(chan struct{})}
}

func (f *fakeConfig) FastInterval() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.interval
}

func (f *fakeConfig) setInterval(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interval = d
}

func (f *fakeConfig) Subscribe() <-chan struct{} { return f.ch }

func (f *fakeConfig) Unsubscribe(<-chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubbed = true
}

// notify blocks until the run loop receives the change signal.
func (f *fakeConfig) notify() {
	f.ch <- struct{}{}
}

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, s)
}

func (l *callLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

type fakeSampler struct {
	log *callLog

	mu             sync.Mutex
	cpu, mem, disk float64
	panicNext      bool
}

func (s *fakeSampler) RefreshMetrics() {
	s.log.add("sample")
	s.mu.Lock()
	shouldPanic := s.panicNext
	s.panicNext = false
	s.mu.Unlock()
	if shouldPanic {
		panic("sampler exploded")
	}
}

func (s *fakeSampler) setUsage(cpu, mem, disk float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cpu, s.mem, s.disk = cpu, mem, disk
}

func (s *fakeSampler) failNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panicNext = true
}

func (s *fakeSampler) CurrentCPU() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cpu
}

func (s *fakeSampler) CurrentMemory() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mem
}

func (s *fakeSampler) CurrentDisk() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disk
}

type harness struct {
	clock   *fakeClock
	cfg     *fakeConfig
	sampler *fakeSampler
	log     *callLog
	applied chan Tier
	history chan [2]float64
	sched   *Scheduler
}

func newHarness(t *testing.T, interval time.Duration) *harness {
	t.Helper()
	h := &harness{
		clock:   &fakeClock{},
		cfg:     newFakeConfig(interval),
		log:     &callLog{},
		applied: make(chan Tier, 16),
		history: make(chan [2]float64, 16),
	}
	h.sampler = &fakeSampler{log: h.log}
	h.sched = New(h.clock, h.cfg, Collaborators{
		Sampler:     h.sampler,
		Network:     RefresherFunc(func() { h.log.add("network") }),
		Battery:     RefresherFunc(func() { h.log.add("battery") }),
		Temperature: RefresherFunc(func() { h.log.add("temperature") }),
		Alerts:      AlertFunc(func(cpu, mem, disk float64) { h.log.add("alerts") }),
		History: RecorderFunc(func(cpu, mem float64) {
			h.log.add("history")
			h.history <- [2]float64{cpu, mem}
		}),
		Status: SinkFunc(func(tier Tier) {
			h.log.add("status")
			h.applied <- tier
		}),
	})
	return h
}

func (h *harness) waitTier(t *testing.T) Tier {
	t.Helper()
	select {
	case tier := <-h.applied:
		return tier
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for status application")
		return TierNominal
	}
}

func (h *harness) fast() *fakeTicker { return h.clock.created()[0] }
func (h *harness) slow() *fakeTicker { return h.clock.created()[1] }

func TestStartFiresImmediately(t *testing.T) {
	h := newHarness(t, 2*time.Second)
	h.sampler.setUsage(42, 37, 55)

	h.sched.Start()
	defer h.sched.Stop()

	// History point recorded synchronously on start, before any slow tick.
	select {
	case point := <-h.history:
		require.Equal(t, [2]float64{42, 37}, point)
	default:
		t.Fatal("no history point recorded at start")
	}

	// One fast tick fires without waiting a full interval.
	require.Equal(t, TierNominal, h.waitTier(t))

	tickers := h.clock.created()
	require.Len(t, tickers, 2)
	require.Equal(t, 2*time.Second, tickers[0].interval)
	require.Equal(t, 60*time.Second, tickers[1].interval)
}

func TestFastTickSequence(t *testing.T) {
	h := newHarness(t, 2*time.Second)
	h.sched.Start()
	defer h.sched.Stop()
	h.waitTier(t) // initial tick

	before := len(h.log.snapshot())
	h.fast().tick()
	h.waitTier(t)

	calls := h.log.snapshot()[before:]
	require.Equal(t, []string{"sample", "network", "battery", "temperature", "alerts", "status"}, calls)
}

func TestSlowTickRecordsLastKnownValues(t *testing.T) {
	h := newHarness(t, 2*time.Second)
	h.sampler.setUsage(10, 20, 30)
	h.sched.Start()
	defer h.sched.Stop()
	h.waitTier(t)
	<-h.history // start-time point

	h.sampler.setUsage(71, 62, 30)
	h.slow().tick()
	select {
	case point := <-h.history:
		require.Equal(t, [2]float64{71, 62}, point)
	case <-time.After(2 * time.Second):
		t.Fatal("no history point from slow tick")
	}
}

func TestConfigChangeReplacesOnlyFastTimer(t *testing.T) {
	h := newHarness(t, 2*time.Second)
	h.sched.Start()
	defer h.sched.Stop()
	h.waitTier(t)

	fastBefore, slowBefore := h.fast(), h.slow()
	h.cfg.setInterval(5 * time.Second)
	h.cfg.notify()

	require.Eventually(t, func() bool {
		return len(h.clock.created()) == 3
	}, 2*time.Second, 10*time.Millisecond)

	tickers := h.clock.created()
	require.True(t, fastBefore.isStopped(), "old fast ticker should be stopped")
	require.False(t, slowBefore.isStopped(), "slow ticker must not be replaced")
	require.Same(t, slowBefore, tickers[1])
	require.Equal(t, 5*time.Second, tickers[2].interval)
	require.True(t, h.sched.Running())
}

func TestConfigChangeSameIntervalIsNoop(t *testing.T) {
	h := newHarness(t, 2*time.Second)
	h.sched.Start()
	defer h.sched.Stop()
	h.waitTier(t)

	h.cfg.notify()
	// Change signal for an unchanged interval must not touch the timers.
	time.Sleep(50 * time.Millisecond)
	require.Len(t, h.clock.created(), 2)
	require.False(t, h.fast().isStopped())
	require.False(t, h.slow().isStopped())
}

func TestStopIsIdempotent(t *testing.T) {
	h := newHarness(t, 2*time.Second)
	h.sched.Stop() // stop before start is a no-op

	h.sched.Start()
	h.waitTier(t)
	h.sched.Stop()
	h.sched.Stop()

	require.False(t, h.sched.Running())
	require.True(t, h.fast().isStopped())
	require.True(t, h.slow().isStopped())
}

func TestStartWhileRunningIsNoop(t *testing.T) {
	h := newHarness(t, 2*time.Second)
	h.sched.Start()
	defer h.sched.Stop()
	h.waitTier(t)

	h.sched.Start()
	require.Len(t, h.clock.created(), 2)
}

func TestSamplerFailureDoesNotBreakNextTick(t *testing.T) {
	h := newHarness(t, 2*time.Second)
	h.sched.Start()
	defer h.sched.Stop()
	h.waitTier(t)

	h.sampler.failNext()
	h.fast().tick()

	// The panicking cycle produces no status update; the next one must.
	h.fast().tick()
	h.waitTier(t)
}

func TestStatusSequenceScenario(t *testing.T) {
	h := newHarness(t, 2*time.Second)
	h.sampler.setUsage(60, 50, 40)
	h.sched.Start()
	defer h.sched.Stop()

	require.Equal(t, TierNominal, h.waitTier(t))

	h.sampler.setUsage(90, 50, 40)
	h.fast().tick()
	require.Equal(t, TierCritical, h.waitTier(t))
}

func TestStopUnsubscribesFromConfig(t *testing.T) {
	h := newHarness(t, 2*time.Second)
	h.sched.Start()
	h.waitTier(t)
	h.sched.Stop()

	h.cfg.mu.Lock()
	defer h.cfg.mu.Unlock()
	require.True(t, h.cfg.unsubbed)
}
