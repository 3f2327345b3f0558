package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for session setup and token exchange.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Session setup
	ActivationsTotal   *prometheus.CounterVec
	ActivationDuration *prometheus.HistogramVec

	// Token exchange endpoint
	TokenExchangesTotal   *prometheus.CounterVec
	TokenExchangeDuration prometheus.Histogram
}

// Token exchange outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeBadRequest     = "bad_request"
	OutcomeUpstreamFailed = "upstream_failed"
)

// NewMetrics creates and registers all collectors with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		ActivationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "activity_session_activations_total",
				Help: "Total number of session setups by final status",
			},
			[]string{"authenticate", "status"},
		),
		ActivationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "activity_session_activation_duration_seconds",
				Help:    "Time from activation to a terminal status",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		TokenExchangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "activity_session_token_exchanges_total",
				Help: "Total number of authorization code exchanges by outcome",
			},
			[]string{"outcome"},
		),
		TokenExchangeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "activity_session_token_exchange_duration_seconds",
				Help:    "Upstream token exchange latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}

	registry.MustRegister(
		m.ActivationsTotal,
		m.ActivationDuration,
		m.TokenExchangesTotal,
		m.TokenExchangeDuration,
	)
	return m
}

func (m *Metrics) RecordActivation(authenticate bool, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.ActivationsTotal.WithLabelValues(strconv.FormatBool(authenticate), status).Inc()
	m.ActivationDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *Metrics) RecordTokenExchange(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.TokenExchangesTotal.WithLabelValues(outcome).Inc()
	if outcome != OutcomeBadRequest {
		m.TokenExchangeDuration.Observe(duration.Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
