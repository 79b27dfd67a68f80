// Package metric provides Prometheus metrics for FrameKV.
//
// It exposes connection and command counters for monitoring the serving
// loop, plus a gauge fed by the store.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	// ConnectionsActive tracks currently open client connections.
	ConnectionsActive prometheus.Gauge

	// ConnectionsTotal counts accepted connections.
	ConnectionsTotal prometheus.Counter

	// CommandsTotal counts handled commands, labeled by command name
	// and outcome (ok, error).
	CommandsTotal *prometheus.CounterVec

	// ProtocolErrors counts malformed frames that terminated a connection.
	ProtocolErrors prometheus.Counter

	// KeysStored tracks the number of entries in the store.
	KeysStored prometheus.Gauge
}

// NewRegistry creates a metrics registry with all collectors registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		reg: reg,
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "framekv",
			Name:      "connections_active",
			Help:      "Number of currently open client connections.",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "framekv",
			Name:      "connections_total",
			Help:      "Total number of accepted client connections.",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "framekv",
			Name:      "commands_total",
			Help:      "Total number of handled commands.",
		}, []string{"command", "outcome"}),
		ProtocolErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "framekv",
			Name:      "protocol_errors_total",
			Help:      "Total number of protocol errors that closed a connection.",
		}),
		KeysStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "framekv",
			Name:      "keys_stored",
			Help:      "Number of entries currently in the store.",
		}),
	}

	reg.MustRegister(
		r.ConnectionsActive,
		r.ConnectionsTotal,
		r.CommandsTotal,
		r.ProtocolErrors,
		r.KeysStored,
	)

	return r
}

// Handler returns an HTTP handler serving the metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}
