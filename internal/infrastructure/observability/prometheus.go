package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes reported on billharmony_searches_total
const (
	OutcomeResults     = "results"
	OutcomeNoResults   = "no_results"
	OutcomeMissingInfo = "missing_info"
	OutcomeInvalid     = "invalid"
)

// DomainMetrics holds the Prometheus collectors for search and eligibility traffic.
// A nil *DomainMetrics is valid and records nothing.
type DomainMetrics struct {
	registry *prometheus.Registry

	Searches            *prometheus.CounterVec
	SearchDuration      *prometheus.HistogramVec
	SearchResults       prometheus.Histogram
	LocationFallbacks   prometheus.Counter
	EligibilityChecks   *prometheus.CounterVec
	CircuitBreakerState *prometheus.GaugeVec
}

// NewDomainMetrics creates the collectors on a fresh registry that also carries
// the Go runtime and process collectors
func NewDomainMetrics() *DomainMetrics {
	m := &DomainMetrics{
		registry: prometheus.NewRegistry(),
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "billharmony_searches_total",
			Help: "Price searches by kind and outcome",
		}, []string{"kind", "outcome"}),
		SearchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "billharmony_search_duration_seconds",
			Help:    "Price search pipeline duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"kind"}),
		SearchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "billharmony_search_result_count",
			Help:    "Facilities returned per search",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
		}),
		LocationFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "billharmony_location_fallbacks_total",
			Help: "Searches whose location token resolved to the fallback coordinate",
		}),
		EligibilityChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "billharmony_eligibility_checks_total",
			Help: "Charity eligibility checks by whether any program qualified",
		}, []string{"qualified"}),
		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "billharmony_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		}, []string{"name"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Searches,
		m.SearchDuration,
		m.SearchResults,
		m.LocationFallbacks,
		m.EligibilityChecks,
		m.CircuitBreakerState,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format
func (m *DomainMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *DomainMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSearch records one finished search
func (m *DomainMetrics) ObserveSearch(kind, outcome string, results int, seconds float64) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(kind, outcome).Inc()
	m.SearchDuration.WithLabelValues(kind).Observe(seconds)
	if outcome == OutcomeResults || outcome == OutcomeNoResults {
		m.SearchResults.Observe(float64(results))
	}
}

// ObserveLocationFallback counts a location that fell back to the default coordinate
func (m *DomainMetrics) ObserveLocationFallback() {
	if m == nil {
		return
	}
	m.LocationFallbacks.Inc()
}

// ObserveEligibility counts one eligibility check
func (m *DomainMetrics) ObserveEligibility(qualified bool) {
	if m == nil {
		return
	}
	label := "false"
	if qualified {
		label = "true"
	}
	m.EligibilityChecks.WithLabelValues(label).Inc()
}

// SetBreakerState publishes a circuit breaker state; unknown states read as closed
func (m *DomainMetrics) SetBreakerState(name, state string) {
	if m == nil {
		return
	}
	v := 0.0
	switch state {
	case "open":
		v = 1
	case "half-open":
		v = 2
	}
	m.CircuitBreakerState.WithLabelValues(name).Set(v)
}
