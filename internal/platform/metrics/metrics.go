package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Logins          prometheus.Counter
	Registrations   prometheus.Counter
	TokenRefreshes  prometheus.Counter
	Logouts         prometheus.Counter
	AuthFailures    *prometheus.CounterVec
	AuditAppends    *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	EndpointLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cradle_logins_total",
			Help: "Total number of successful logins",
		}),
		Registrations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cradle_registrations_total",
			Help: "Total number of user registrations",
		}),
		TokenRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cradle_token_refreshes_total",
			Help: "Total number of access token refreshes",
		}),
		Logouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cradle_logouts_total",
			Help: "Total number of logouts (refresh token revocations)",
		}),
		AuthFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cradle_auth_failures_total",
			Help: "Total number of authentication failures, labeled by reason",
		}, []string{"reason"}),
		AuditAppends: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cradle_audit_appends_total",
			Help: "Total number of audit log appends, labeled by outcome",
		}, []string{"outcome"}),
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cradle_http_requests_total",
			Help: "Total number of HTTP requests, labeled by method, route, and status",
		}, []string{"method", "route", "status"}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cradle_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}
