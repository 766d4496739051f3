package observability

import (
	"sync"
	"time"
)

// MockMetricsRegistry records counter increments so tests can assert on them.
// Latency observations are ignored.
type MockMetricsRegistry struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewMockMetricsRegistry creates an empty MockMetricsRegistry.
func NewMockMetricsRegistry() *MockMetricsRegistry {
	return &MockMetricsRegistry{counters: make(map[string]int)}
}

func (m *MockMetricsRegistry) inc(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = make(map[string]int)
	}
	m.counters[key]++
}

// Count returns how often the counter identified by name and labels was incremented,
// e.g. Count("metric_fetch", "sleep", "failure").
func (m *MockMetricsRegistry) Count(name string, labels ...string) int {
	key := name
	for _, l := range labels {
		key += "|" + l
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key]
}

// HTTP Request metrics
func (m *MockMetricsRegistry) IncrementRequests(endpoint, method, status string) {
	m.inc("requests|" + endpoint + "|" + method + "|" + status)
}
func (m *MockMetricsRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}

// Garmin session metrics
func (m *MockMetricsRegistry) IncrementLogins(outcome string) { m.inc("logins|" + outcome) }
func (m *MockMetricsRegistry) IncrementUpstreamRequests(call, status string) {
	m.inc("upstream|" + call + "|" + status)
}

// Daily metric fetch metrics
func (m *MockMetricsRegistry) IncrementMetricFetch(metric, outcome string) {
	m.inc("metric_fetch|" + metric + "|" + outcome)
}
func (m *MockMetricsRegistry) RecordMetricFetchLatency(metric string, duration time.Duration) {}

// Notification metrics
func (m *MockMetricsRegistry) IncrementNotifications(channel, outcome string) {
	m.inc("notifications|" + channel + "|" + outcome)
}
