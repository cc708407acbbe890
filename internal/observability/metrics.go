package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total control API requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interstitial_http_requests_total",
			Help: "Total control API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// control API latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "interstitial_http_request_duration_seconds",
			Help:    "Histogram of control API request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// loads issued to the ad network, labelled by unit and outcome
	LoadCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interstitial_loads_total",
			Help: "Total interstitial load requests by outcome",
		},
		[]string{"unit", "outcome"},
	)

	// ad network load latency
	LoadLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "interstitial_load_duration_seconds",
			Help:    "Duration of interstitial load requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"unit"},
	)

	// show() calls labelled by what the coordinator did
	ShowCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interstitial_shows_total",
			Help: "Total show calls by outcome",
		},
		[]string{"unit", "outcome"},
	)

	// terminal presentation events (dismissed / failed)
	PresentationCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interstitial_presentations_total",
			Help: "Total finished presentations by outcome",
		},
		[]string{"unit", "outcome"},
	)

	// SDK bootstrap attempts
	BootstrapCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interstitial_bootstrap_total",
			Help: "Total ad SDK initializations by outcome",
		},
		[]string{"outcome"},
	)

	// resolved consent, labelled by status
	ConsentCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interstitial_consent_resolutions_total",
			Help: "Total consent resolutions by status",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		LoadCount,
		LoadLatency,
		ShowCount,
		PresentationCount,
		BootstrapCount,
		ConsentCount,
	)
}
