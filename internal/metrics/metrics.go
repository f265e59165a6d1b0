// Package metrics holds connection-accounting collectors; the protocol
// itself is not instrumented.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ConnectionsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "garage_connections_open",
		Help: "Currently open websocket connections.",
	})
	SessionsJoined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "garage_sessions_joined_total",
		Help: "Join events accepted since start.",
	})
	Events = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "garage_events_total",
		Help: "Inbound protocol events by type.",
	}, []string{"type"})
	FramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "garage_frames_dropped_total",
		Help: "Outbound frames dropped on closed or saturated peers.",
	})
)

// Handler exposes Prometheus metrics at /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
