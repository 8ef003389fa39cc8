// Package progress remembers which levels the player has beaten.
package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed set of beaten levels.
type Store struct {
	db *sql.DB
}

// Open opens or creates the progress database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("empty progress db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS beaten (
			level_id  TEXT PRIMARY KEY,
			ticks     INTEGER NOT NULL,
			beaten_at TEXT NOT NULL
		);`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init progress db: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record is one beaten level.
type Record struct {
	LevelID  string
	Ticks    int // fewest ticks the level was beaten in
	BeatenAt time.Time
}

// MarkBeaten records that levelID was beaten in ticks ticks, keeping the
// best result.
func (s *Store) MarkBeaten(ctx context.Context, levelID string, ticks int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO beaten (level_id, ticks, beaten_at) VALUES (?, ?, ?)
		ON CONFLICT(level_id) DO UPDATE SET
			ticks = MIN(ticks, excluded.ticks),
			beaten_at = CASE WHEN excluded.ticks < ticks THEN excluded.beaten_at ELSE beaten_at END`,
		levelID, ticks, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("mark %s beaten: %w", levelID, err)
	}
	return nil
}

// Beaten reports whether levelID has been beaten.
func (s *Store) Beaten(ctx context.Context, levelID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM beaten WHERE level_id = ?`, levelID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// All returns every beaten level, ordered by level id.
func (s *Store) All(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT level_id, ticks, beaten_at FROM beaten ORDER BY level_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r  Record
			at string
		)
		if err := rows.Scan(&r.LevelID, &r.Ticks, &at); err != nil {
			return nil, err
		}
		if r.BeatenAt, err = time.Parse(time.RFC3339, at); err != nil {
			return nil, fmt.Errorf("level %s: %w", r.LevelID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
