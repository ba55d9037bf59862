// Package ingest is the synchronous write path between the logging facade
// and the event store.
package ingest

import (
	"context"
	"time"

	"runtrace/internal/metrics"
	"runtrace/internal/store"
)

// Recorder persists one event per call for a fixed run id.
type Recorder struct {
	st      store.EventStore
	runID   int64
	now     func() time.Time
	metrics *metrics.Metrics
}

// NewRecorder creates a Recorder writing to st under runID. m may be nil.
func NewRecorder(st store.EventStore, runID int64, m *metrics.Metrics) *Recorder {
	return &Recorder{st: st, runID: runID, now: time.Now, metrics: m}
}

// RunID returns the run id events are recorded under.
func (r *Recorder) RunID() int64 {
	return r.runID
}

// Record stamps the current instant, constructs an Event and durably appends
// it. When Record returns nil the event is queryable: there is no
// write-behind buffer between ingestion and report generation.
func (r *Recorder) Record(ctx context.Context, area string, lv store.Level, msg string) error {
	ev := &store.Event{
		RunID:   r.runID,
		Area:    area,
		Level:   lv,
		Message: msg,
		At:      r.now().UTC(),
	}
	if err := r.st.Append(ctx, ev); err != nil {
		if r.metrics != nil {
			r.metrics.AppendFailures.Inc()
		}
		return err
	}
	if r.metrics != nil {
		r.metrics.EventsRecorded.WithLabelValues(lv.String()).Inc()
	}
	return nil
}
