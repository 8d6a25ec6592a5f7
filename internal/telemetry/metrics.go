package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "agentcatalog"

// Metrics holds the catalog's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	reloads     *prometheus.CounterVec
	templates   prometheus.Gauge
	generations *prometheus.CounterVec
	clients     prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Template reloads by result.",
		}, []string{"result"}),
		templates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "templates",
			Help:      "Templates in the current snapshot.",
		}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "code_generations_total",
			Help:      "Generated code files by framework.",
		}, []string{"framework"}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_reload_clients",
			Help:      "Connected live reload websocket clients.",
		}),
	}
	m.registry.MustRegister(
		m.requests, m.duration, m.reloads, m.templates, m.generations, m.clients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// RecordReload counts a reload and, when it succeeded, the new catalog size.
func (m *Metrics) RecordReload(err error, templates int) {
	if m == nil {
		return
	}
	if err != nil {
		m.reloads.WithLabelValues("error").Inc()
		return
	}
	m.reloads.WithLabelValues("ok").Inc()
	m.templates.Set(float64(templates))
}

func (m *Metrics) SetTemplates(n int) {
	if m == nil {
		return
	}
	m.templates.Set(float64(n))
}

func (m *Metrics) RecordGeneration(framework string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(framework).Inc()
}

func (m *Metrics) SetClients(n int) {
	if m == nil {
		return
	}
	m.clients.Set(float64(n))
}
