package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS events (
    id BIGSERIAL PRIMARY KEY,
    run_id BIGINT NOT NULL,
    area TEXT NOT NULL,
    level TEXT NOT NULL,
    message TEXT NOT NULL,
    at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_run_id ON events(run_id);
`

// PostgresStore implements EventStore backed by PostgreSQL, for deployments
// that keep run telemetry in a shared relational database instead of a local
// file.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and creates the schema if absent.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close shuts down the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Append inserts one event. The event's ID is filled in on success.
func (s *PostgresStore) Append(ctx context.Context, ev *Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO events (run_id, area, level, message, at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		ev.RunID, ev.Area, ev.Level.String(), ev.Message, ev.At).Scan(&ev.ID)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Events returns all events for runID ordered by timestamp, then insertion
// order.
func (s *PostgresStore) Events(ctx context.Context, runID int64) ([]Event, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, run_id, area, level, message, at
		FROM events WHERE run_id = $1 ORDER BY at ASC, id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var level string
		if err := rows.Scan(&ev.ID, &ev.RunID, &ev.Area, &level, &ev.Message, &ev.At); err != nil {
			return nil, err
		}
		if ev.Level, err = ParseLevel(level); err != nil {
			return nil, fmt.Errorf("event %d: %w", ev.ID, err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// MaxRunID returns the highest run id in the store, or 0 when empty.
func (s *PostgresStore) MaxRunID(ctx context.Context) (int64, error) {
	var max *int64
	if err := s.pool.QueryRow(ctx, `SELECT MAX(run_id) FROM events`).Scan(&max); err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// Purge removes all events for runID.
func (s *PostgresStore) Purge(ctx context.Context, runID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM events WHERE run_id = $1`, runID)
	return err
}
