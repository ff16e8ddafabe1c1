// Package metrics defines the Prometheus collectors of the client.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "acadcart_client"

type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ProbeAttempts   *prometheus.CounterVec
	SessionExpired  prometheus.Counter
}

// New registers the client collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Requests sent to the service, by path and status code",
		}, []string{"path", "code"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Round trip time of requests to the service",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),

		ProbeAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probe_attempts_total",
			Help:      "Connectivity probe attempts, by result",
		}, []string{"result"}),

		SessionExpired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_expired_total",
			Help:      "Sessions torn down because the service rejected the credential",
		}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
