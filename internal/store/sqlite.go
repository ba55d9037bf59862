package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements EventStore backed by a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and creates the schema
// if absent.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Pragmas also go in the DSN so they apply to every connection in the
	// database/sql pool, not just the one an Exec happens to check out.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	// Concurrent appenders wait for the current writer instead of failing
	// with SQLITE_BUSY.
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Fixed-width layout so the stored strings sort lexicographically in
// chronological order. time.RFC3339Nano trims trailing fractional zeros,
// which breaks ORDER BY at for timestamps whose fractions print at
// different lengths.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeFormat, s)
}

// Append inserts one event. The event's ID is filled in on success.
func (s *SQLiteStore) Append(ctx context.Context, ev *Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO events (run_id, area, level, message, at)
		VALUES (?, ?, ?, ?, ?)`,
		ev.RunID, ev.Area, ev.Level.String(), ev.Message, formatTime(ev.At))
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		ev.ID = id
	}
	return nil
}

// Events returns all events for runID ordered by timestamp, then insertion
// order.
func (s *SQLiteStore) Events(ctx context.Context, runID int64) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, area, level, message, at
		FROM events WHERE run_id = ? ORDER BY at ASC, id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var level, at string
		if err := rows.Scan(&ev.ID, &ev.RunID, &ev.Area, &level, &ev.Message, &at); err != nil {
			return nil, err
		}
		if ev.Level, err = ParseLevel(level); err != nil {
			return nil, fmt.Errorf("event %d: %w", ev.ID, err)
		}
		if ev.At, err = parseTime(at); err != nil {
			return nil, fmt.Errorf("event %d: parse at: %w", ev.ID, err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// MaxRunID returns the highest run id in the store, or 0 when empty.
func (s *SQLiteStore) MaxRunID(ctx context.Context) (int64, error) {
	var max sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(run_id) FROM events`).Scan(&max); err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return max.Int64, nil
}

// Purge removes all events for runID.
func (s *SQLiteStore) Purge(ctx context.Context, runID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE run_id = ?`, runID)
	return err
}
