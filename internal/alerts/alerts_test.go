package alerts

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sysmon-pro/sysmon/internal/config"
)

type captureNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureNotifier) Notify(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func newEvaluator(t *testing.T) (*Evaluator, *captureNotifier, *config.Store) {
	t.Helper()
	store := config.NewStore(filepath.Join(t.TempDir(), "config.json"))
	store.Load()
	notifier := &captureNotifier{}
	return NewEvaluator(store, notifier), notifier, store
}

func TestEvaluateBelowThresholds(t *testing.T) {
	e, notifier, _ := newEvaluator(t)
	events := e.Evaluate(50, 60, 70)
	require.Empty(t, events)
	require.Zero(t, notifier.count())
}

func TestEvaluateBreachNotifies(t *testing.T) {
	e, notifier, _ := newEvaluator(t)
	events := e.Evaluate(95, 10, 10)

	require.Len(t, events, 1)
	require.Equal(t, "cpu", events[0].Metric)
	require.Equal(t, 95.0, events[0].Value)
	require.Equal(t, 90.0, events[0].Threshold)
	require.Equal(t, 1, notifier.count())
}

func TestEvaluateMultipleBreaches(t *testing.T) {
	e, notifier, _ := newEvaluator(t)
	events := e.Evaluate(95, 92, 99)
	require.Len(t, events, 3)
	require.Equal(t, 3, notifier.count())
}

func TestCooldownSuppressesRepeatNotifications(t *testing.T) {
	e, notifier, _ := newEvaluator(t)
	now := time.Now()
	e.now = func() time.Time { return now }

	require.Len(t, e.Evaluate(95, 10, 10), 1)
	require.Equal(t, 1, notifier.count())

	// Still breached within the cooldown window: event yes, notify no.
	now = now.Add(30 * time.Second)
	require.Len(t, e.Evaluate(96, 10, 10), 1)
	require.Equal(t, 1, notifier.count())

	now = now.Add(31 * time.Second)
	require.Len(t, e.Evaluate(97, 10, 10), 1)
	require.Equal(t, 2, notifier.count())
}

func TestThresholdsReadLiveFromStore(t *testing.T) {
	e, notifier, store := newEvaluator(t)
	require.Empty(t, e.Evaluate(80, 10, 10))

	store.Update(func(c *config.Config) { c.CPUAlertPercent = 75 })
	require.Len(t, e.Evaluate(80, 10, 10), 1)
	require.Equal(t, 1, notifier.count())
}

func TestZeroThresholdDisablesCheck(t *testing.T) {
	e, _, store := newEvaluator(t)
	store.Update(func(c *config.Config) { c.CPUAlertPercent = 0 })
	require.Empty(t, e.Evaluate(99.9, 10, 10))
}
