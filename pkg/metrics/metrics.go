// Package metrics provides Prometheus metrics for the Poppy service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueriesTotal tracks database queries by table, operation and status
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poppy",
			Subsystem: "database",
			Name:      "queries_total",
			Help:      "Total number of database queries by table, operation and status",
		},
		[]string{"table", "operation", "status"},
	)

	// QueryDuration tracks database query duration in seconds
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "poppy",
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"table", "operation"},
	)

	// EventsEmittedTotal tracks record change events published to Kafka
	EventsEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "poppy",
			Subsystem: "events",
			Name:      "emitted_total",
			Help:      "Total number of record change events emitted by type and status",
		},
		[]string{"event_type", "status"},
	)
)

// ObserveQuery records the outcome of one database query.
func ObserveQuery(table, operation string, seconds float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	QueriesTotal.WithLabelValues(table, operation, status).Inc()
	QueryDuration.WithLabelValues(table, operation).Observe(seconds)
}
