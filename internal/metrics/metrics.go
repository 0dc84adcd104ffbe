package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "teachermail"

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

type Metrics struct {
	generations     *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	providerTokens  *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		generations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Email generation attempts by outcome.",
		}, []string{"outcome"}),
		providerLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Latency of text-generation provider calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"model"}),
		providerTokens: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_tokens_total",
			Help:      "Provider-reported token usage.",
		}, []string{"model", "kind"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (m *Metrics) ObserveGeneration(outcome string) {
	m.generations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveProviderLatency(model string, d time.Duration) {
	m.providerLatency.WithLabelValues(model).Observe(d.Seconds())
}

func (m *Metrics) AddTokenUsage(_ context.Context, model string, promptTokens, completionTokens int) {
	m.providerTokens.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	m.providerTokens.WithLabelValues(model, "completion").Add(float64(completionTokens))
}

func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}
