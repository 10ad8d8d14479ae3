// Package metrics holds the Prometheus collectors for the FailWatch server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	pagesFetchedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "failwatch",
			Name:      "pages_fetched_total",
			Help:      "Source pages fetched from the upstream API, partitioned by source.",
		},
		[]string{"source"},
	)

	sourceFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "failwatch",
			Name:      "source_failures_total",
			Help:      "Per-source fetch failures that degraded to an empty page.",
		},
		[]string{"source"},
	)

	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "failwatch",
			Name:      "cache_lookups_total",
			Help:      "Page cache lookups, partitioned by result (hit, miss, stale).",
		},
		[]string{"result"},
	)

	fetchCycleSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "failwatch",
			Name:      "fetch_cycle_seconds",
			Help:      "Full aggregation cycle latency in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	chatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "failwatch",
			Name:      "chat_requests_total",
			Help:      "Chat assistant requests, partitioned by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)
)

// Register attaches FailWatch collectors to the supplied Prometheus
// registerer. Safe to call more than once.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		pagesFetchedTotal,
		sourceFailuresTotal,
		cacheLookupsTotal,
		fetchCycleSeconds,
		chatRequestsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

func PageFetched(source string) { pagesFetchedTotal.WithLabelValues(source).Inc() }

func SourceFailure(source string) { sourceFailuresTotal.WithLabelValues(source).Inc() }

func CacheLookup(result string) { cacheLookupsTotal.WithLabelValues(result).Inc() }

func ObserveFetchCycle(d time.Duration) {
	if d < 0 {
		d = 0
	}
	fetchCycleSeconds.Observe(d.Seconds())
}

func ChatRequest(provider, outcome string) {
	chatRequestsTotal.WithLabelValues(provider, outcome).Inc()
}
