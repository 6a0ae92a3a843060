// Package metrics owns a private prometheus registry. A nil *Metrics is valid
// and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	extractions *prometheus.CounterVec
	ragAnswers  *prometheus.CounterVec
	upstream    *prometheus.CounterVec
	decisions   *prometheus.CounterVec
	queueDepth  prometheus.Gauge
}

func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "path", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"method", "path"}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_outcomes_total",
			Help:      "Parser terminal states by document kind.",
		}, []string{"kind", "state"}),
		ragAnswers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rag_answers_total",
			Help:      "RAG answers by source (model or fallback).",
		}, []string{"source"}),
		upstream: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_calls_total",
			Help:      "Calls to remote services by outcome.",
		}, []string{"service", "result"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_decisions_total",
			Help:      "Approval decisions produced by the scoring models.",
		}, []string{"decision"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scoring_queue_depth",
			Help:      "Pending scoring jobs seen by the last worker poll.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.latency, m.extractions, m.ragAnswers, m.upstream, m.decisions, m.queueDepth,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveRequest(method, path string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, path).Observe(took.Seconds())
}

func (m *Metrics) Extraction(kind, state string) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(kind, state).Inc()
}

func (m *Metrics) RAGAnswer(source string) {
	if m == nil {
		return
	}
	m.ragAnswers.WithLabelValues(source).Inc()
}

func (m *Metrics) Upstream(service string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.upstream.WithLabelValues(service, result).Inc()
}

func (m *Metrics) Decision(decision int) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(strconv.Itoa(decision)).Inc()
}

func (m *Metrics) QueueDepth(n int64) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(n))
}
