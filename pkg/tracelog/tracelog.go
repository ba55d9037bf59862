// Package tracelog is the logging facade for long-running, multi-phase
// batch processes. Every call is mirrored to the console and per-severity
// files and persisted to the event store under this process's run id; Close
// derives the runtime breakdown and error digest for the run, writes both
// report documents and purges the run's events.
package tracelog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"runtrace/internal/config"
	"runtrace/internal/ingest"
	"runtrace/internal/logfile"
	"runtrace/internal/metrics"
	"runtrace/internal/registry"
	"runtrace/internal/report"
	"runtrace/internal/store"
)

// Logger is the process-wide engine behind the facade: one store handle, one
// run id. Construct it once in the host's composition root with Open and
// hand it to all call sites; close it exactly once from the host's shutdown
// path.
type Logger struct {
	st  store.EventStore
	rec *ingest.Recorder

	console    zerolog.Logger
	consoleOn  bool
	consoleMin store.Level
	mirror     *logfile.Mirror
	storeMin   store.Level

	reported []store.Level
	emitter  *report.Emitter
	metrics  *metrics.Metrics

	closeOnce sync.Once
	closeErr  error
}

// Open wires the store, run registry, mirrors and report emitter for this
// process execution. The store must be reachable; a registry read failure is
// not fatal and degrades to run id 1.
func Open(ctx context.Context, cfg *config.Config) (*Logger, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", cfg.DataDir, err)
	}

	storeMin, err := store.ParseLevel(cfg.Store.MinLevel)
	if err != nil {
		return nil, fmt.Errorf("store min_level: %w", err)
	}
	consoleMin, err := store.ParseLevel(cfg.Console.MinLevel)
	if err != nil {
		return nil, fmt.Errorf("console min_level: %w", err)
	}
	reported, err := cfg.ReportedLevels()
	if err != nil {
		return nil, fmt.Errorf("reported_levels: %w", err)
	}

	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.Path, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("open event store: %w", err)
	}

	l := &Logger{
		st:         st,
		console:    zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger(),
		consoleOn:  cfg.Console.IsEnabled(),
		consoleMin: consoleMin,
		storeMin:   storeMin,
		reported:   reported,
		emitter:    report.NewEmitter(cfg.Reports.Dir, cfg.Reports.HistoryCap),
		metrics:    metrics.New(),
	}

	runID, err := registry.NextRunID(ctx, st)
	if err != nil {
		l.console.Warn().Err(err).Msg("run registry degraded")
	}
	l.rec = ingest.NewRecorder(st, runID, l.metrics)

	if cfg.Files.IsEnabled() {
		mirror, err := logfile.NewMirror(cfg.Files.Dir, cfg.Files.BackupDays)
		if err != nil {
			l.console.Warn().Err(err).Msg("file mirror unavailable, continuing without it")
		} else {
			l.mirror = mirror
		}
	}

	return l, nil
}

// RunID returns the run id assigned to this process execution.
func (l *Logger) RunID() int64 {
	return l.rec.RunID()
}

// Gatherer exposes the instrumentation registry so the host process can
// serve it alongside its own metrics.
func (l *Logger) Gatherer() prometheus.Gatherer {
	return l.metrics.Registry
}

// For returns the facade for one named area of work. Successive events
// against different areas mark area transitions in the runtime breakdown.
func (l *Logger) For(area string) *AreaLogger {
	return &AreaLogger{l: l, area: area}
}

// Record mirrors and persists one event. The returned error is the store
// append failure, if any; mirroring never fails the call. Callers that
// cannot tolerate lost durability should check it, the level-named facade
// methods log it and continue degraded.
func (l *Logger) Record(area string, lv store.Level, msg string) error {
	now := time.Now().UTC()

	if l.consoleOn && lv >= l.consoleMin {
		l.console.WithLevel(consoleLevel(lv)).Str("area", area).Msg(msg)
	}
	if l.mirror != nil {
		l.mirror.Write(now, area, lv, msg)
	}

	if lv < l.storeMin {
		return nil
	}
	return l.rec.Record(context.Background(), area, lv, msg)
}

func (l *Logger) record(area string, lv store.Level, msg string) {
	if err := l.Record(area, lv, msg); err != nil {
		l.console.Error().Err(err).Str("area", area).Msg("event store append failed")
	}
}

func consoleLevel(lv store.Level) zerolog.Level {
	switch lv {
	case store.LevelDebug:
		return zerolog.DebugLevel
	case store.LevelInfo, store.LevelStatus:
		return zerolog.InfoLevel
	case store.LevelWarning:
		return zerolog.WarnLevel
	default:
		// CRITICAL maps to error too: zerolog's fatal would exit the
		// process, which instrumentation must never do.
		return zerolog.ErrorLevel
	}
}

// Close finalizes the run exactly once: derive both reports, write them,
// purge this run's events, then release the mirrors and the store. Report
// failures are logged and swallowed: a failure to report must never mask
// the process's actual exit status. The returned error covers resource
// teardown only. Duplicate calls are no-ops returning the first result.
func (l *Logger) Close() error {
	l.closeOnce.Do(func() {
		l.closeErr = l.finalize()
	})
	return l.closeErr
}

func (l *Logger) finalize() error {
	start := time.Now()
	l.generateReports(context.Background())
	l.metrics.FinalizeSeconds.Observe(time.Since(start).Seconds())

	var firstErr error
	if l.mirror != nil {
		if err := l.mirror.Close(); err != nil {
			firstErr = err
		}
	}
	if err := l.st.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (l *Logger) generateReports(ctx context.Context) {
	runID := l.rec.RunID()

	events, err := l.st.Events(ctx, runID)
	if err != nil {
		l.console.Error().Err(err).Int64("run_id", runID).Msg("reading run events for reports")
		return
	}

	// The store is a working buffer, not permanent history: once read, this
	// run's rows are purged whether or not the reports get written.
	defer func() {
		if err := l.st.Purge(ctx, runID); err != nil {
			l.console.Error().Err(err).Int64("run_id", runID).Msg("purging run events")
		}
	}()

	rt, err := report.Segment(events)
	if errors.Is(err, report.ErrInsufficientData) {
		l.console.Info().Int64("run_id", runID).Msg("fewer than two events recorded, skipping reports")
		return
	}
	if err != nil {
		l.console.Error().Err(err).Int64("run_id", runID).Msg("runtime segmentation failed")
		return
	}

	if err := l.emitter.WriteRuntime(rt); err != nil {
		l.metrics.ReportWrites.WithLabelValues("runtime", "error").Inc()
		l.console.Error().Err(err).Msg("writing runtime report")
	} else {
		l.metrics.ReportWrites.WithLabelValues("runtime", "ok").Inc()
	}

	digest := report.Aggregate(events, l.reported)
	if err := l.emitter.WriteErrors(digest); err != nil {
		l.metrics.ReportWrites.WithLabelValues("errors", "error").Inc()
		l.console.Error().Err(err).Msg("writing error report")
	} else {
		l.metrics.ReportWrites.WithLabelValues("errors", "ok").Inc()
	}
}
