// Package registry assigns each process execution its run identifier by
// inspecting the event store's history at startup.
package registry

import (
	"context"
	"fmt"

	"runtrace/internal/store"
)

// NextRunID returns the run id for a new process execution: one past the
// highest run id still present in the store (rows left behind by a crashed
// prior run keep their ids), or 1 for an empty store.
//
// A store read failure degrades to 1 instead of propagating; the returned
// error only reports the degradation so the caller can log it through the
// facade.
func NextRunID(ctx context.Context, st store.EventStore) (int64, error) {
	max, err := st.MaxRunID(ctx)
	if err != nil {
		return 1, fmt.Errorf("read max run id, falling back to 1: %w", err)
	}
	return max + 1, nil
}
