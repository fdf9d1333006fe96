// Package observability holds the Prometheus metrics for the intake API.
//
// Metrics are exposed on /metrics. All methods are safe on a nil *Metrics so
// components can run without instrumentation in tests.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "greenledger"

type Metrics struct {
	// IntakeTotal counts intake submissions.
	// Labels: endpoint (waitlist, cloud_connection), outcome (created, validation, conflict, ...)
	IntakeTotal *prometheus.CounterVec

	// StoreDurationSeconds measures persistence calls.
	// Labels: operation, status (ok, error)
	StoreDurationSeconds *prometheus.HistogramVec

	// FollowupsTotal counts connection-check jobs handed to the queue.
	// Labels: result (queued, failed)
	FollowupsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with reg.
// Registering twice on the same registry panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		IntakeTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "intake",
				Name:      "submissions_total",
				Help:      "Total intake submissions by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		StoreDurationSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "store",
				Name:      "operation_duration_seconds",
				Help:      "Duration of persistence gateway calls in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"operation", "status"},
		),
		FollowupsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "followup",
				Name:      "jobs_total",
				Help:      "Connection check jobs by publish result",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) ObserveIntake(endpoint, outcome string) {
	if m == nil {
		return
	}
	m.IntakeTotal.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) ObserveStore(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StoreDurationSeconds.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveFollowup(err error) {
	if m == nil {
		return
	}
	result := "queued"
	if err != nil {
		result = "failed"
	}
	m.FollowupsTotal.WithLabelValues(result).Inc()
}
