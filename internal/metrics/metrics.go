// Package metrics exposes Prometheus instrumentation for the thrips service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thrips_records_created_total",
			Help: "Total number of count records stored",
		},
	)

	RecordErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thrips_record_errors_total",
			Help: "Total number of rejected or failed record submissions",
		},
		[]string{"kind"}, // "validation", "store"
	)

	Aggregations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thrips_aggregations_total",
			Help: "Total number of aggregation reads by period",
		},
		[]string{"period", "status"},
	)

	PublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thrips_publish_failures_total",
			Help: "Total number of recorded events that could not be published",
		},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thrips_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RecordAggregation counts one aggregation read.
func RecordAggregation(period string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	Aggregations.WithLabelValues(period, status).Inc()
}

// ObserveRequest records the latency of a finished HTTP request.
func ObserveRequest(method, route string, status int, d time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
