package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garminsync_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "garminsync_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// Garmin login attempts labelled by outcome (success, auth_failure, failure)
	LoginCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garminsync_login_total",
			Help: "Total Garmin Connect login attempts",
		},
		[]string{"outcome"},
	)

	// per-metric fetch outcomes (success, empty, failure)
	MetricFetchCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garminsync_metric_fetch_total",
			Help: "Total daily metric fetches by metric and outcome",
		},
		[]string{"metric", "outcome"},
	)

	// per-metric fetch latency
	MetricFetchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "garminsync_metric_fetch_duration_seconds",
			Help:    "Duration of daily metric fetches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"metric"},
	)

	// outbound calls to Garmin Connect, labelled by call and HTTP status class
	UpstreamCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garminsync_upstream_requests_total",
			Help: "Total outbound Garmin Connect requests",
		},
		[]string{"call", "status"},
	)

	// outbound notification attempts per channel
	NotificationCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "garminsync_notifications_total",
			Help: "Total notifications sent by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)
)

func init() {
	// register all metrics
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		LoginCount,
		MetricFetchCount,
		MetricFetchLatency,
		UpstreamCount,
		NotificationCount,
	)
}
