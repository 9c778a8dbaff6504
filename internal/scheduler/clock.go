package scheduler

import "time"

// Ticker abstracts time.Ticker so tests can drive ticks without waiting on
// wall-clock time.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates tickers. The zero-dependency production implementation is
// RealClock.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

type RealClock struct{}

func (RealClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }
