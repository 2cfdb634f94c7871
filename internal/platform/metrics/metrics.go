// Package metrics expone los contadores Prometheus del servicio en un registry propio.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	transitions   *prometheus.CounterVec
	notifications *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "adoption_transitions_total",
			Help: "Adoption lifecycle transitions by operation and outcome kind.",
		}, []string{"transition", "outcome"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_emitted_total",
			Help: "Notifications committed by type.",
		}, []string{"type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route pattern and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.transitions, m.notifications, m.httpRequests, m.httpDuration)
	return m
}

// ObserveTransition registra el resultado de una operación del ciclo de adopción.
// outcome es "ok" o el kind del error.
func (m *Metrics) ObserveTransition(transition, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(transition, outcome).Inc()
}

func (m *Metrics) ObserveNotification(notificationType string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(notificationType).Inc()
}

func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// TransitionCounter y NotificationCounter se exponen para tests.
func (m *Metrics) TransitionCounter(transition, outcome string) prometheus.Counter {
	return m.transitions.WithLabelValues(transition, outcome)
}

func (m *Metrics) NotificationCounter(notificationType string) prometheus.Counter {
	return m.notifications.WithLabelValues(notificationType)
}
