package observability

import "time"

// MetricsRegistry provides an interface for recording application metrics
// This replaces direct access to global Prometheus metrics with dependency injection
type MetricsRegistry interface {
	// HTTP Request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	// Garmin session metrics
	IncrementLogins(outcome string)
	IncrementUpstreamRequests(call, status string)

	// Daily metric fetch metrics
	IncrementMetricFetch(metric, outcome string)
	RecordMetricFetchLatency(metric string, duration time.Duration)

	// Notification metrics
	IncrementNotifications(channel, outcome string)
}

// PrometheusRegistry implements MetricsRegistry using the global Prometheus metrics
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

// HTTP Request metrics
func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

// Garmin session metrics
func (r *PrometheusRegistry) IncrementLogins(outcome string) {
	LoginCount.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRegistry) IncrementUpstreamRequests(call, status string) {
	UpstreamCount.WithLabelValues(call, status).Inc()
}

// Daily metric fetch metrics
func (r *PrometheusRegistry) IncrementMetricFetch(metric, outcome string) {
	MetricFetchCount.WithLabelValues(metric, outcome).Inc()
}

func (r *PrometheusRegistry) RecordMetricFetchLatency(metric string, duration time.Duration) {
	MetricFetchLatency.WithLabelValues(metric).Observe(duration.Seconds())
}

// Notification metrics
func (r *PrometheusRegistry) IncrementNotifications(channel, outcome string) {
	NotificationCount.WithLabelValues(channel, outcome).Inc()
}

// NoOpRegistry implements MetricsRegistry with no-op methods for testing
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (r *NoOpRegistry) IncrementLogins(outcome string)                                       {}
func (r *NoOpRegistry) IncrementUpstreamRequests(call, status string)                        {}
func (r *NoOpRegistry) IncrementMetricFetch(metric, outcome string)                          {}
func (r *NoOpRegistry) RecordMetricFetchLatency(metric string, duration time.Duration)       {}
func (r *NoOpRegistry) IncrementNotifications(channel, outcome string)                       {}
