package observability

import "time"

// MetricsRegistry provides an interface for recording coordinator metrics.
// Components receive it by injection instead of touching the Prometheus globals.
type MetricsRegistry interface {
	// Control API metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	// Interstitial lifecycle metrics
	IncrementLoads(unit, outcome string)
	RecordLoadLatency(unit string, duration time.Duration)
	IncrementShows(unit, outcome string)
	IncrementPresentations(unit, outcome string)

	// Bootstrap and consent metrics
	IncrementBootstraps(outcome string)
	IncrementConsentResolutions(status string)
}

// PrometheusRegistry implements MetricsRegistry using the global Prometheus metrics
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementLoads(unit, outcome string) {
	LoadCount.WithLabelValues(unit, outcome).Inc()
}

func (r *PrometheusRegistry) RecordLoadLatency(unit string, duration time.Duration) {
	LoadLatency.WithLabelValues(unit).Observe(duration.Seconds())
}

func (r *PrometheusRegistry) IncrementShows(unit, outcome string) {
	ShowCount.WithLabelValues(unit, outcome).Inc()
}

func (r *PrometheusRegistry) IncrementPresentations(unit, outcome string) {
	PresentationCount.WithLabelValues(unit, outcome).Inc()
}

func (r *PrometheusRegistry) IncrementBootstraps(outcome string) {
	BootstrapCount.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRegistry) IncrementConsentResolutions(status string) {
	ConsentCount.WithLabelValues(status).Inc()
}

// NoOpRegistry implements MetricsRegistry with no-op methods for testing
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}
func (r *NoOpRegistry) IncrementLoads(unit, outcome string)                                  {}
func (r *NoOpRegistry) RecordLoadLatency(unit string, duration time.Duration)                {}
func (r *NoOpRegistry) IncrementShows(unit, outcome string)                                  {}
func (r *NoOpRegistry) IncrementPresentations(unit, outcome string)                          {}
func (r *NoOpRegistry) IncrementBootstraps(outcome string)                                   {}
func (r *NoOpRegistry) IncrementConsentResolutions(status string)                            {}
