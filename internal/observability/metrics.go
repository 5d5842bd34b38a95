// Package observability holds the Prometheus metrics for the API.
//
// Metrics are registered on the Registerer handed to NewMetrics so tests can
// use a fresh registry. A nil *Metrics is valid and records nothing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "foodshare"

type Metrics struct {
	// ClaimTransitions counts Complete/Cancel calls.
	// Labels: transition (complete, cancel), outcome (ok, not_found, invalid, error)
	ClaimTransitions *prometheus.CounterVec

	// ListingMutations counts listing writes.
	// Labels: op (create, update, delete), outcome
	ListingMutations *prometheus.CounterVec

	// ListingsPurged counts listings removed by a claim transition.
	// Labels: reason (completed, expired)
	ListingsPurged *prometheus.CounterVec

	// ReportCacheLookups counts report cache reads.
	// Labels: result (hit, miss, error)
	ReportCacheLookups *prometheus.CounterVec

	// ReportDuration measures uncached report queries.
	// Labels: report
	ReportDuration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ClaimTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "claims",
				Name:      "transitions_total",
				Help:      "Claim lifecycle transitions by transition and outcome",
			},
			[]string{"transition", "outcome"},
		),
		ListingMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "listings",
				Name:      "mutations_total",
				Help:      "Food listing writes by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		ListingsPurged: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "listings",
				Name:      "purged_total",
				Help:      "Listings removed as a side effect of a claim transition",
			},
			[]string{"reason"},
		),
		ReportCacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "reports",
				Name:      "cache_lookups_total",
				Help:      "Report cache lookups by result",
			},
			[]string{"result"},
		),
		ReportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "reports",
				Name:      "query_duration_seconds",
				Help:      "Time spent running report queries against the store",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"report"},
		),
	}
}

func (m *Metrics) ClaimTransition(transition, outcome string) {
	if m == nil {
		return
	}
	m.ClaimTransitions.WithLabelValues(transition, outcome).Inc()
}

func (m *Metrics) ListingMutation(op, outcome string) {
	if m == nil {
		return
	}
	m.ListingMutations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) ListingPurged(reason string) {
	if m == nil {
		return
	}
	m.ListingsPurged.WithLabelValues(reason).Inc()
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.ReportCacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ReportQuery(report string, started time.Time) {
	if m == nil {
		return
	}
	m.ReportDuration.WithLabelValues(report).Observe(time.Since(started).Seconds())
}
