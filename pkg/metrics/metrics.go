// Package metrics provides Prometheus metrics for spec resolution.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheLookupsTotal tracks store lookups by component type and result (hit, miss, shared)
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "specs",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Total number of resolution cache lookups by result",
		},
		[]string{"component_type", "result"},
	)

	// ChainExecutionsTotal tracks provider chain runs by final status
	ChainExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "specs",
			Subsystem: "chain",
			Name:      "executions_total",
			Help:      "Total number of provider chain executions by status",
		},
		[]string{"component_type", "status"},
	)

	// ProviderAttemptsTotal tracks every chain step
	ProviderAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "specs",
			Subsystem: "chain",
			Name:      "provider_attempts_total",
			Help:      "Total number of provider attempts by outcome",
		},
		[]string{"provider", "outcome"},
	)

	// ChainDuration tracks provider chain execution time in seconds
	ChainDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "specs",
			Subsystem: "chain",
			Name:      "duration_seconds",
			Help:      "Duration of provider chain executions in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"component_type"},
	)

	// ProxyFetchesTotal tracks outbound proxy fetches by result
	ProxyFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "specs",
			Subsystem: "proxy",
			Name:      "fetches_total",
			Help:      "Total number of proxy fetches by result",
		},
		[]string{"result"},
	)

	// ProxyCreditsSpentTotal tracks credits charged by the proxy
	ProxyCreditsSpentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "specs",
			Subsystem: "proxy",
			Name:      "credits_spent_total",
			Help:      "Total number of proxy credits spent",
		},
	)

	// ProxyQuotaExhaustedTotal tracks quota exhaustion signals, local or proxy-reported
	ProxyQuotaExhaustedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "specs",
			Subsystem: "proxy",
			Name:      "quota_exhausted_total",
			Help:      "Total number of fetches refused because credits are exhausted",
		},
	)

	// JobsInFlight tracks resolution jobs currently running
	JobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "specs",
			Subsystem: "jobs",
			Name:      "in_flight",
			Help:      "Number of resolution jobs currently running",
		},
	)
)

// Cache lookup results.
const (
	CacheHit    = "hit"
	CacheMiss   = "miss"
	CacheShared = "shared"
)

// Proxy fetch results.
const (
	FetchOK    = "ok"
	FetchError = "error"
	FetchQuota = "quota_exhausted"
)
