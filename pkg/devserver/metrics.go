package devserver

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "widget_devserver"

// Metrics are the server's Prometheus collectors on a private registry.
type Metrics struct {
	registry     *prometheus.Registry
	chatReplies  *prometheus.CounterVec
	leads        prometheus.Counter
	rateLimited  *prometheus.CounterVec
	assistantLat prometheus.Histogram
}

// NewMetrics registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		chatReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "chat_replies_total",
			Help:      "Chat replies by kind (assistant, emergency, medical_advice_request, error).",
		}, []string{"kind"}),
		leads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "leads_total",
			Help:      "Leads accepted.",
		}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"route"}),
		assistantLat: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "assistant_seconds",
			Help:      "Time spent waiting for the assistant.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(
		m.chatReplies,
		m.leads,
		m.rateLimited,
		m.assistantLat,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
