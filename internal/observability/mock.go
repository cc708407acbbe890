package observability

import (
	"sync"
	"time"
)

var _ MetricsRegistry = (*MockMetricsRegistry)(nil)

// MockMetricsRegistry records counter increments in memory so tests can
// assert on them. Keys are the metric name followed by its labels, joined by "/".
type MockMetricsRegistry struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMockMetricsRegistry returns an empty recording registry.
func NewMockMetricsRegistry() *MockMetricsRegistry {
	return &MockMetricsRegistry{counts: make(map[string]int)}
}

func (m *MockMetricsRegistry) inc(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = make(map[string]int)
	}
	m.counts[key]++
}

// Count returns how many times the given key was incremented.
func (m *MockMetricsRegistry) Count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}

func (m *MockMetricsRegistry) IncrementRequests(endpoint, method, status string) {
	m.inc("requests/" + endpoint + "/" + method + "/" + status)
}
func (m *MockMetricsRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (m *MockMetricsRegistry) IncrementLoads(unit, outcome string) {
	m.inc("loads/" + unit + "/" + outcome)
}
func (m *MockMetricsRegistry) RecordLoadLatency(unit string, duration time.Duration) {}
func (m *MockMetricsRegistry) IncrementShows(unit, outcome string) {
	m.inc("shows/" + unit + "/" + outcome)
}
func (m *MockMetricsRegistry) IncrementPresentations(unit, outcome string) {
	m.inc("presentations/" + unit + "/" + outcome)
}
func (m *MockMetricsRegistry) IncrementBootstraps(outcome string) {
	m.inc("bootstraps/" + outcome)
}
func (m *MockMetricsRegistry) IncrementConsentResolutions(status string) {
	m.inc("consent/" + status)
}
