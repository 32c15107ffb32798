// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records request-level counters. The session middleware and the
// RPC dispatcher both feed it.
type Collector struct {
	sessionDecisions *prometheus.CounterVec
	rpcCalls         *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessionDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mino_session_decisions_total",
			Help: "Session middleware outcomes by decision",
		}, []string{"decision"}),
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mino_rpc_calls_total",
			Help: "RPC calls by procedure and status",
		}, []string{"procedure", "status"}),
	}

	reg.MustRegister(
		c.sessionDecisions,
		c.rpcCalls,
	)

	return c
}

func (c *Collector) RecordSessionDecision(decision string) {
	c.sessionDecisions.WithLabelValues(decision).Inc()
}

func (c *Collector) RecordRPCCall(procedure, status string) {
	c.rpcCalls.WithLabelValues(procedure, status).Inc()
}

// Handler returns the scrape endpoint for the given gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
