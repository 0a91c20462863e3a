package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution outcomes recorded for get_votesmart.
const (
	OutcomeResolved         = "resolved"
	OutcomeUnknownParty     = "unknown_party"
	OutcomeMissingCandidate = "missing_candidate"
	OutcomeMissingIndex     = "missing_index"
)

// Metrics provides observability for the registry module.
type Metrics struct {
	// List/point lookup latencies by table
	LookupDuration *prometheus.HistogramVec

	// Admin mutations by operation
	MutationsTotal *prometheus.CounterVec

	// Recommendation resolutions by outcome
	ResolutionsTotal *prometheus.CounterVec

	// Mutations rejected by the access guard
	UnauthorizedTotal prometheus.Counter
}

// New creates a new Metrics instance with all registry metrics registered.
func New() *Metrics {
	return &Metrics{
		LookupDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "votesmart_registry_lookup_duration_seconds",
			Help:    "Duration of registry list and point lookups by table",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"table"}),

		MutationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "votesmart_registry_mutations_total",
			Help: "Total admin mutations applied by operation",
		}, []string{"operation"}),

		ResolutionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "votesmart_registry_resolutions_total",
			Help: "Total recommendation resolutions by outcome",
		}, []string{"outcome"}),

		UnauthorizedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "votesmart_registry_unauthorized_total",
			Help: "Total mutations rejected because the caller is not the master account",
		}),
	}
}

// ObserveLookup records the duration of a lookup against one table.
func (m *Metrics) ObserveLookup(table string, d time.Duration) {
	if m != nil {
		m.LookupDuration.WithLabelValues(table).Observe(d.Seconds())
	}
}

// IncrementMutation records an applied admin mutation.
func (m *Metrics) IncrementMutation(operation string) {
	if m != nil {
		m.MutationsTotal.WithLabelValues(operation).Inc()
	}
}

// IncrementResolution records a recommendation resolution outcome.
func (m *Metrics) IncrementResolution(outcome string) {
	if m != nil {
		m.ResolutionsTotal.WithLabelValues(outcome).Inc()
	}
}

// IncrementUnauthorized records a guard rejection.
func (m *Metrics) IncrementUnauthorized() {
	if m != nil {
		m.UnauthorizedTotal.Inc()
	}
}
