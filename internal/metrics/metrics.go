// Package metrics provides Prometheus metrics for the aggregator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "newsagg"

var (
	// ProviderRequestsTotal counts provider calls by outcome.
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total number of provider API calls",
		},
		[]string{"provider", "operation", "outcome"},
	)

	// ProviderRequestDuration measures provider call latency.
	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of provider API calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)

	// ArticlesUpsertedTotal counts articles written to the store.
	ArticlesUpsertedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_upserted_total",
			Help:      "Total number of articles upserted into the store",
		},
		[]string{"source"},
	)

	// RefreshRunsTotal counts full refresh runs.
	RefreshRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_runs_total",
			Help:      "Total number of full refresh runs",
		},
		[]string{"status"},
	)

	// SearchesTotal counts searches by the path that answered them.
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Total number of searches by answering path",
		},
		[]string{"path"},
	)
)

// Outcome labels
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeMalformed = "malformed"
)

// RecordProviderRequest records one provider call.
func RecordProviderRequest(provider, operation, outcome string, seconds float64) {
	ProviderRequestsTotal.WithLabelValues(provider, operation, outcome).Inc()
	ProviderRequestDuration.WithLabelValues(provider, operation).Observe(seconds)
}

// RecordUpserted records a stored batch.
func RecordUpserted(source string, n int) {
	ArticlesUpsertedTotal.WithLabelValues(source).Add(float64(n))
}

// RecordRefresh records the result of a FetchAll run.
func RecordRefresh(ok bool) {
	status := OutcomeSuccess
	if !ok {
		status = OutcomeError
	}
	RefreshRunsTotal.WithLabelValues(status).Inc()
}

// RecordSearch records which path answered a search ("store" or "live").
func RecordSearch(path string) {
	SearchesTotal.WithLabelValues(path).Inc()
}
