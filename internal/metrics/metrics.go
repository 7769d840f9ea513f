// Package metrics provides Prometheus metrics for the couple plans backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlanWritesTotal tracks plan mutations by operation and result
	PlanWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "couple_plans",
			Subsystem: "plans",
			Name:      "writes_total",
			Help:      "Total number of plan writes by operation and result",
		},
		[]string{"operation", "result"},
	)

	// RemoteSyncErrorsTotal tracks failed writes to the remote document store
	RemoteSyncErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "couple_plans",
			Subsystem: "remote",
			Name:      "sync_errors_total",
			Help:      "Total number of failed writes to the remote document store",
		},
		[]string{"operation"},
	)

	// RealtimeDeliveriesTotal tracks snapshots received from the realtime listeners
	RealtimeDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "couple_plans",
			Subsystem: "realtime",
			Name:      "deliveries_total",
			Help:      "Total number of realtime snapshots received",
		},
		[]string{"stream"},
	)

	// StreamSubscribers tracks connected Server-Sent-Events clients
	StreamSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "couple_plans",
			Subsystem: "realtime",
			Name:      "stream_subscribers",
			Help:      "Number of connected event stream subscribers",
		},
	)

	// LoginAttemptsTotal tracks sign-in attempts by result
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "couple_plans",
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Total number of sign-in attempts by result",
		},
		[]string{"result"},
	)

	// HTTPRequestDuration tracks inbound HTTP request duration
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "couple_plans",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of inbound HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route", "status_code"},
	)
)

// Result labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Result maps an error to a result label.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
