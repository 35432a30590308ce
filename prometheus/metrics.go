// Package prometheus exposes Prometheus metrics for the locrag web server
// and its remote calls.
package prometheus

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RemoteBuckets covers remote call latencies from 100ms to 5m, the upload
// timeout.
var RemoteBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300}

var (
	// RequestsTotal counts HTTP requests by method, route and status class.
	RequestsTotal = prom.NewCounterVec(
		prom.CounterOpts{
			Name: "locrag_http_requests_total",
			Help: "HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds.
	RequestDuration = prom.NewHistogramVec(
		prom.HistogramOpts{
			Name:    "locrag_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: RemoteBuckets,
		},
		[]string{"method", "route"},
	)

	// RemoteCallsTotal counts calls to the document store and generator by
	// operation and error code ("ok" on success).
	RemoteCallsTotal = prom.NewCounterVec(
		prom.CounterOpts{
			Name: "locrag_remote_calls_total",
			Help: "Remote service calls",
		},
		[]string{"op", "code"},
	)

	// RemoteCallDuration records remote call latency in seconds.
	RemoteCallDuration = prom.NewHistogramVec(
		prom.HistogramOpts{
			Name:    "locrag_remote_call_duration_seconds",
			Help:    "Remote service call latency",
			Buckets: RemoteBuckets,
		},
		[]string{"op"},
	)

	// SessionsActive tracks the number of live web sessions.
	SessionsActive = prom.NewGauge(
		prom.GaugeOpts{
			Name: "locrag_sessions_active",
			Help: "Live web sessions",
		},
	)
)

func init() {
	prom.MustRegister(
		RequestsTotal,
		RequestDuration,
		RemoteCallsTotal,
		RemoteCallDuration,
		SessionsActive,
	)
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
