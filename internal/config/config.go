package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Config is the persisted settings record, stored as JSON under ~/.sysmon.
type Config struct {
	RefreshIntervalSeconds float64   `json:"refresh_interval_seconds"`
	Theme                  string    `json:"theme"`
	CPUAlertPercent        float64   `json:"cpu_alert_percent"`
	MemoryAlertPercent     float64   `json:"memory_alert_percent"`
	DiskAlertPercent       float64   `json:"disk_alert_percent"`
	HistoryRetentionDays   int       `json:"history_retention_days"`
	Geometry               *Geometry `json:"dashboard_geometry,omitempty"`
}

// Geometry is the dashboard placement record saved on exit and restored on
// the next launch.
type Geometry struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func Default() Config {
	return Config{
		RefreshIntervalSeconds: 2.0,
		Theme:                  "green",
		CPUAlertPercent:        90,
		MemoryAlertPercent:     90,
		DiskAlertPercent:       90,
		HistoryRetentionDays:   7,
	}
}

// DefaultDir returns the per-user sysmon directory, falling back to the
// temp dir when the home directory cannot be resolved.
func DefaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.TempDir()
	}
	return filepath.Join(homeDir, ".sysmon")
}

// Store owns the settings file and fans change notifications out to
// subscribers. Every mutation through Update notifies, regardless of which
// field changed; consumers compare values themselves.
type Store struct {
	mu   sync.Mutex
	path string
	cfg  Config
	subs []chan struct{}
}

func NewStore(path string) *Store {
	return &Store{path: path, cfg: Default()}
}

// Load refreshes the in-memory config from disk. A missing or corrupt file
// silently falls back to defaults.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := Default()
	data, err := os.ReadFile(s.path)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			cfg = Default()
		}
	}
	if cfg.RefreshIntervalSeconds <= 0 {
		cfg.RefreshIntervalSeconds = Default().RefreshIntervalSeconds
	}
	s.cfg = cfg
}

// Save writes the current config to disk, creating the directory if needed.
// Write failures are swallowed: settings persistence is best-effort.
func (s *Store) Save() {
	s.mu.Lock()
	cfg := s.cfg
	path := s.path
	s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return
	}
	os.WriteFile(path, data, 0644)
}

func (s *Store) Get() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Update applies fn to the config, persists it, and notifies all
// subscribers.
func (s *Store) Update(fn func(*Config)) {
	s.mu.Lock()
	fn(&s.cfg)
	if s.cfg.RefreshIntervalSeconds <= 0 {
		s.cfg.RefreshIntervalSeconds = Default().RefreshIntervalSeconds
	}
	subs := make([]chan struct{}, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	s.Save()
	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe returns a channel that receives a signal on every settings
// mutation. The channel is buffered; a slow consumer sees at most one
// coalesced pending signal.
func (s *Store) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	s.subs = append(s.subs, ch)
	return ch
}

func (s *Store) Unsubscribe(ch <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub == ch {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// FastInterval is the refresh cadence as a duration.
func (s *Store) FastInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.cfg.RefreshIntervalSeconds * float64(time.Second))
}
