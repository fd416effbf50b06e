package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the fetch and cache layers.
type Metrics struct {
	CacheHits   *prometheus.CounterVec // labels: cache (history|quote)
	CacheMisses *prometheus.CounterVec // labels: cache

	FetchAttempts *prometheus.CounterVec // labels: path, outcome (ok|empty|fault)
	FetchFailures *prometheus.CounterVec // labels: kind (rate_limited|upstream_failure|not_found)
	FetchDuration prometheus.Histogram
}

// New registers all metrics on reg and returns them. Pass a fresh
// prometheus.NewRegistry in tests to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocklens_cache_hits_total",
			Help: "Cache lookups answered without an upstream fetch",
		}, []string{"cache"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocklens_cache_misses_total",
			Help: "Cache lookups that fell through to the fetch path",
		}, []string{"cache"}),
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocklens_fetch_attempts_total",
			Help: "Individual upstream attempts by path and outcome",
		}, []string{"path", "outcome"}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocklens_fetch_failures_total",
			Help: "Exhausted fetches by classified kind",
		}, []string{"kind"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stocklens_fetch_duration_seconds",
			Help:    "Wall-clock time of a full fetch including retries",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
	reg.MustRegister(
		m.CacheHits, m.CacheMisses,
		m.FetchAttempts, m.FetchFailures, m.FetchDuration,
	)
	return m
}
