package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "config.json"))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s := tempStore(t)
	s.Load()

	cfg := s.Get()
	require.Equal(t, 2.0, cfg.RefreshIntervalSeconds)
	require.Equal(t, "green", cfg.Theme)
	require.Nil(t, cfg.Geometry)
}

func TestLoadCorruptFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	s := NewStore(path)
	s.Load()
	require.Equal(t, Default(), s.Get())
}

func TestLoadRejectsNonPositiveInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"refresh_interval_seconds": -3}`), 0644))

	s := NewStore(path)
	s.Load()
	require.Equal(t, 2.0, s.Get().RefreshIntervalSeconds)
}

func TestUpdatePersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	s := NewStore(path)
	s.Load()
	s.Update(func(c *Config) {
		c.RefreshIntervalSeconds = 3.5
		c.Theme = "cyan"
		c.Geometry = &Geometry{X: 10, Y: 20, Width: 120, Height: 40}
	})

	reloaded := NewStore(path)
	reloaded.Load()
	cfg := reloaded.Get()
	require.Equal(t, 3.5, cfg.RefreshIntervalSeconds)
	require.Equal(t, "cyan", cfg.Theme)
	require.NotNil(t, cfg.Geometry)
	require.Equal(t, 120, cfg.Geometry.Width)
	require.Equal(t, 40, cfg.Geometry.Height)
}

func TestUpdateNotifiesSubscribers(t *testing.T) {
	s := tempStore(t)
	ch := s.Subscribe()

	// Any mutation notifies, even one unrelated to the refresh rate.
	s.Update(func(c *Config) { c.Theme = "red" })

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no change notification")
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	s := tempStore(t)
	ch := s.Subscribe()
	s.Unsubscribe(ch)

	s.Update(func(c *Config) { c.Theme = "blue" })
	select {
	case <-ch:
		t.Fatal("unsubscribed channel still notified")
	default:
	}
}

func TestFastInterval(t *testing.T) {
	s := tempStore(t)
	s.Update(func(c *Config) { c.RefreshIntervalSeconds = 0.5 })
	require.Equal(t, 500*time.Millisecond, s.FastInterval())
}
