// Package history persists one usage point per slow tick into SQLite, so
// the dashboard and API can chart CPU/memory over time across restarts.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sysmon-pro/sysmon/internal/log"
)

// Point is one recorded usage sample.
type Point struct {
	CPUUsage    float64   `json:"cpu_usage"`
	MemoryUsage float64   `json:"memory_usage"`
	RecordedAt  time.Time `json:"recorded_at"`
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS usage_history (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		cpu_usage   REAL NOT NULL,
		mem_usage   REAL NOT NULL,
		recorded_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_usage_history_recorded_at ON usage_history(recorded_at)`,
}

// Store wraps the SQLite usage-history database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at dbPath. Use ":memory:"
// in tests.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Insert stores one usage point.
func (s *Store) Insert(ctx context.Context, p Point) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_history (cpu_usage, mem_usage, recorded_at) VALUES (?, ?, ?)`,
		p.CPUUsage, p.MemoryUsage, p.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Recent returns up to limit points, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Point, error) {
	if limit <= 0 {
		limit = 60
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT cpu_usage, mem_usage, recorded_at FROM usage_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var p Point
		var recordedAt string
		if err := rows.Scan(&p.CPUUsage, &p.MemoryUsage, &recordedAt); err != nil {
			return nil, err
		}
		p.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parse recorded_at %q: %w", recordedAt, err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// Prune deletes points recorded before cutoff and returns how many went.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM usage_history WHERE recorded_at < ?`, cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Record is the best-effort recorder the scheduler calls: failures are
// logged and dropped so a full disk never breaks the refresh loop.
func (s *Store) Record(cpu, mem float64) {
	p := Point{CPUUsage: cpu, MemoryUsage: mem, RecordedAt: time.Now()}
	if err := s.Insert(context.Background(), p); err != nil {
		log.Debug().Err(err).Msg("history record failed")
	}
}
