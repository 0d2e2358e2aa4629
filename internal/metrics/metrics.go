package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded on blog_mutations_total.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the application's prometheus collectors on a private registry.
type Metrics struct {
	registry   *prometheus.Registry
	mutations  *prometheus.CounterVec
	retries    *prometheus.CounterVec
	violations *prometheus.CounterVec
}

// New creates and registers the application collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_mutations_total",
			Help: "Write operations by operation and outcome.",
		}, []string{"op", "outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_store_retries_total",
			Help: "Atomic units retried after a store conflict.",
		}, []string{"op"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_consistency_violations_total",
			Help: "Counter invariants that would have been broken.",
		}, []string{"op"}),
	}
	m.registry.MustRegister(
		m.mutations,
		m.retries,
		m.violations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Mutation counts one finished write.
func (m *Metrics) Mutation(op, outcome string) {
	m.mutations.WithLabelValues(op, outcome).Inc()
}

// Retry counts one retried atomic unit.
func (m *Metrics) Retry(op string) {
	m.retries.WithLabelValues(op).Inc()
}

// Violation counts one consistency violation.
func (m *Metrics) Violation(op string) {
	m.violations.WithLabelValues(op).Inc()
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
