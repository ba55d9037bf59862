package store

import (
	"context"
	"time"
)

// Event is one recorded occurrence within a run. Events are immutable once
// written; for STATUS events the message becomes the name of the sub-phase
// the event opens.
type Event struct {
	ID      int64
	RunID   int64
	Area    string
	Level   Level
	Message string
	At      time.Time
}

// EventStore is the durable, append-only home of events. Implementations
// must serialize concurrent appends from within one process; cross-process
// access is out of scope.
type EventStore interface {
	// Append durably writes one event. A write failure is always reported to
	// the caller so it can degrade or abort; it is never swallowed.
	Append(ctx context.Context, ev *Event) error

	// Events returns every event belonging to runID, ordered by
	// (timestamp, insertion order) ascending.
	Events(ctx context.Context, runID int64) ([]Event, error)

	// MaxRunID returns the largest run id present across all retained
	// events, or 0 when the store is empty. Leftover rows from a crashed
	// prior run count.
	MaxRunID(ctx context.Context) (int64, error)

	// Purge removes all events for runID. Purging an already-empty run is a
	// no-op, not an error.
	Purge(ctx context.Context, runID int64) error

	// Close releases the underlying connection or handle.
	Close() error
}
