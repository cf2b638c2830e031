// Package metrics exposes Prometheus counters and histograms for
// orchestration operations, grounded on the teacher's pkg/metrics:
// the same prometheus.NewCounterVec/HistogramVec registration style
// and Timer helper, scoped here to cluster operations instead of
// container/node/raft gauges.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OperationsTotal counts orchestrator operations by name and
	// outcome ("success" or "failure").
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dynia_operations_total",
			Help: "Total number of orchestrator operations by name and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// OperationDuration observes how long each orchestrator operation
	// took, in seconds.
	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dynia_operation_duration_seconds",
			Help:    "Duration of orchestrator operations in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1s .. ~512s
		},
		[]string{"operation"},
	)

	// NodesPreparedTotal counts node preparation attempts by outcome.
	NodesPreparedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dynia_nodes_prepared_total",
			Help: "Total number of node preparation attempts by outcome",
		},
		[]string{"outcome"},
	)

	// RetriesTotal counts retry attempts performed by internal/retry,
	// by the policy description that triggered them.
	RetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dynia_retries_total",
			Help: "Total number of retry attempts by operation description",
		},
		[]string{"description"},
	)
)

func init() {
	prometheus.MustRegister(OperationsTotal, OperationDuration, NodesPreparedTotal, RetriesTotal)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer times one operation and records it on Observe.
type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveOperation records the elapsed duration against operation and
// increments OperationsTotal with the given outcome.
func (t *Timer) ObserveOperation(operation, outcome string) {
	OperationDuration.WithLabelValues(operation).Observe(t.Duration().Seconds())
	OperationsTotal.WithLabelValues(operation, outcome).Inc()
}
