// Package metrics holds Prometheus instrumentation for the tracing core.
// Nothing is served here; the host process may expose the registry on its
// own endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics, registered on a dedicated registry.
type Metrics struct {
	Registry *prometheus.Registry

	EventsRecorded  *prometheus.CounterVec
	AppendFailures  prometheus.Counter
	ReportWrites    *prometheus.CounterVec
	FinalizeSeconds prometheus.Histogram
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,

		EventsRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "runtrace",
				Name:      "events_recorded_total",
				Help:      "Events durably appended to the store, by level.",
			},
			[]string{"level"},
		),

		AppendFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "runtrace",
				Name:      "append_failures_total",
				Help:      "Event store appends that returned an error.",
			},
		),

		ReportWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "runtrace",
				Name:      "report_writes_total",
				Help:      "Report documents written at finalization, by document and status.",
			},
			[]string{"document", "status"},
		),

		FinalizeSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "runtrace",
				Name:      "finalize_duration_seconds",
				Help:      "Duration of report generation at shutdown.",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	reg.MustRegister(m.EventsRecorded, m.AppendFailures, m.ReportWrites, m.FinalizeSeconds)
	return m
}
