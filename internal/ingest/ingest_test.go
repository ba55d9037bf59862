package ingest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"runtrace/internal/metrics"
	"runtrace/internal/store"
)

func TestRecordIsSynchronouslyQueryable(t *testing.T) {
	t.Parallel()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer st.Close()

	m := metrics.New()
	rec := NewRecorder(st, 3, m)

	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return stamp }

	ctx := context.Background()
	if err := rec.Record(ctx, "Scraper", store.LevelWarning, "slow response"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	// If Record returned, the event must already be queryable.
	events, err := st.Events(ctx, 3)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Area != "Scraper" || ev.Level != store.LevelWarning || ev.Message != "slow response" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if !ev.At.Equal(stamp) {
		t.Fatalf("expected stamped time %v, got %v", stamp, ev.At)
	}

	got := testutil.ToFloat64(m.EventsRecorded.WithLabelValues("WARNING"))
	if got != 1 {
		t.Fatalf("expected 1 recorded WARNING in metrics, got %v", got)
	}
}

func TestRecordPropagatesAppendFailure(t *testing.T) {
	t.Parallel()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	st.Close()

	m := metrics.New()
	rec := NewRecorder(st, 1, m)

	if err := rec.Record(context.Background(), "A", store.LevelInfo, "x"); err == nil {
		t.Fatal("expected append failure to propagate")
	}
	if got := testutil.ToFloat64(m.AppendFailures); got != 1 {
		t.Fatalf("expected 1 append failure in metrics, got %v", got)
	}
}
