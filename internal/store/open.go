package store

import (
	"context"
	"fmt"
)

// Open constructs the EventStore backend named by driver: "sqlite" opens the
// database file at path, "postgres" connects to dsn.
func Open(ctx context.Context, driver, path, dsn string) (EventStore, error) {
	switch driver {
	case "", "sqlite":
		return NewSQLiteStore(path)
	case "postgres":
		return NewPostgresStore(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
