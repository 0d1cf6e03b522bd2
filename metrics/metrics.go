package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "escrow"

// Registry is private so that tests can build several servers without
// tripping duplicate registration on the default registerer.
type Registry struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	attestationAttempts *prometheus.CounterVec
	finalizeResults     *prometheus.CounterVec
	chainTxs            *prometheus.CounterVec
}

func NewRegistry() *Registry {
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by route, method and status code",
	}, []string{"route", "method", "status"})

	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	attestationAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attestation_poll_attempts_total",
		Help:      "Attestation poll attempts by observed phase",
	}, []string{"phase"})

	finalizeResults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "finalize_results_total",
		Help:      "receiveMessage submissions by result",
	}, []string{"result"})

	chainTxs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chain_transactions_total",
		Help:      "Transactions submitted by the service, by kind and outcome",
	}, []string{"kind", "outcome"})

	r := prometheus.NewRegistry()
	r.MustRegister(httpRequests, httpDuration, attestationAttempts, finalizeResults, chainTxs)

	return &Registry{
		registry:            r,
		httpRequests:        httpRequests,
		httpDuration:        httpDuration,
		attestationAttempts: attestationAttempts,
		finalizeResults:     finalizeResults,
		chainTxs:            chainTxs,
	}
}

func (m *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Registry) Gatherer() prometheus.Gatherer {
	return m.registry
}

func (m *Registry) ObserveHTTP(route, method string, status int, seconds float64) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(seconds)
}

func (m *Registry) IncAttestationAttempt(phase string) {
	m.attestationAttempts.WithLabelValues(phase).Inc()
}

func (m *Registry) IncFinalize(result string) {
	m.finalizeResults.WithLabelValues(result).Inc()
}

// IncChainTx counts a submitted transaction; err decides the outcome label.
func (m *Registry) IncChainTx(kind string, err error) {
	outcome := "mined"
	if err != nil {
		outcome = "failed"
	}
	m.chainTxs.WithLabelValues(kind, outcome).Inc()
}

// Default is the registry used by components that are not handed one.
var Default = NewRegistry()
