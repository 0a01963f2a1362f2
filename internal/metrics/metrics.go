// Package metrics holds the prometheus collectors for the cube server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	rubik "github.com/SeamusWaldron/rubik_server"
)

// Metrics groups the server's collectors on their own registry so tests
// can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	Moves          *prometheus.CounterVec
	InvalidMoves   prometheus.Counter
	Resets         prometheus.Counter
	Solves         *prometheus.CounterVec
	SolveDuration  prometheus.Histogram
	ActiveSessions prometheus.Gauge
	Requests       *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rubik",
			Name:      "moves_total",
			Help:      "Primitive moves applied, by move token.",
		}, []string{"move"}),
		InvalidMoves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rubik",
			Name:      "invalid_moves_total",
			Help:      "Move requests rejected for an unknown token.",
		}),
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rubik",
			Name:      "resets_total",
			Help:      "Cube resets.",
		}),
		Solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rubik",
			Name:      "solves_total",
			Help:      "Solve requests by outcome.",
		}, []string{"outcome"}),
		SolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rubik",
			Name:      "solve_duration_seconds",
			Help:      "Time spent waiting for the external solver.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rubik",
			Name:      "active_sessions",
			Help:      "Cube sessions currently held in memory.",
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rubik",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(m.Moves, m.InvalidMoves, m.Resets, m.Solves, m.SolveDuration, m.ActiveSessions, m.Requests)
	return m
}

// Observe is a rubik.Cube observer counting applied moves and resets.
func (m *Metrics) Observe(ev rubik.Event) {
	switch ev.Kind {
	case rubik.EventMove:
		for _, mv := range ev.Moves {
			m.Moves.WithLabelValues(mv.String()).Inc()
		}
	case rubik.EventReset:
		m.Resets.Inc()
	}
}

// ObserveSolve records the outcome and latency of one solve call.
func (m *Metrics) ObserveSolve(outcome string, took time.Duration) {
	m.Solves.WithLabelValues(outcome).Inc()
	m.SolveDuration.Observe(took.Seconds())
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
