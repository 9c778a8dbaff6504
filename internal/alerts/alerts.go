// Package alerts checks refreshed usage values against the configured
// thresholds and notifies when one is breached. Notification is rate
// limited per metric so a sustained breach does not spam.
package alerts

import (
	"sync"
	"time"

	"github.com/sysmon-pro/sysmon/internal/config"
	"github.com/sysmon-pro/sysmon/internal/log"
)

const defaultCooldown = time.Minute

// Event describes one threshold breach.
type Event struct {
	Metric    string    `json:"metric"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
	At        time.Time `json:"at"`
}

// Notifier delivers breach events to the user. The default implementation
// logs; the wiring layer stacks a metrics counter on top.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

// LogNotifier writes breaches to the structured log.
type LogNotifier struct{}

func (LogNotifier) Notify(e Event) {
	log.Warn().
		Str("metric", e.Metric).
		Float64("value", e.Value).
		Float64("threshold", e.Threshold).
		Msg("usage threshold exceeded")
}

// Evaluator compares usage against the thresholds in the settings store,
// re-read on every call so edits apply live.
type Evaluator struct {
	store    *config.Store
	notifier Notifier
	cooldown time.Duration
	now      func() time.Time

	mu       sync.Mutex
	lastSent map[string]time.Time
}

func NewEvaluator(store *config.Store, notifier Notifier) *Evaluator {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Evaluator{
		store:    store,
		notifier: notifier,
		cooldown: defaultCooldown,
		now:      time.Now,
		lastSent: make(map[string]time.Time),
	}
}

// Evaluate returns the breaches found for this sample and notifies for
// each one not still in cooldown. Callers may ignore the return value.
func (e *Evaluator) Evaluate(cpu, mem, disk float64) []Event {
	cfg := e.store.Get()
	now := e.now()

	checks := []struct {
		metric    string
		value     float64
		threshold float64
	}{
		{"cpu", cpu, cfg.CPUAlertPercent},
		{"memory", mem, cfg.MemoryAlertPercent},
		{"disk", disk, cfg.DiskAlertPercent},
	}

	var events []Event
	for _, c := range checks {
		if c.threshold <= 0 || c.value < c.threshold {
			continue
		}
		ev := Event{Metric: c.metric, Value: c.value, Threshold: c.threshold, At: now}
		events = append(events, ev)
		if e.shouldNotify(c.metric, now) {
			e.notifier.Notify(ev)
		}
	}
	return events
}

func (e *Evaluator) shouldNotify(metric string, now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if last, ok := e.lastSent[metric]; ok && now.Sub(last) < e.cooldown {
		return false
	}
	e.lastSent[metric] = now
	return true
}
