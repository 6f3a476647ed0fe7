package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wricardo/mcp-training/minesweeper/game/engine"
)

const metricsNamespace = "minesweeper"

// Metrics holds the server's Prometheus collectors on a private registry
type Metrics struct {
	registry        *prometheus.Registry
	sessionsCreated prometheus.Counter
	actions         *prometheus.CounterVec
	gamesFinished   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics registers the game collectors and the Go runtime collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sessions_created_total",
			Help:      "Number of game sessions created.",
		}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "actions_total",
			Help:      "Game commands processed, by action and outcome.",
		}, []string{"action", "outcome"}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "games_finished_total",
			Help:      "Games that reached a terminal state, by outcome.",
		}, []string{"outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route, method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	m.registry.MustRegister(
		m.sessionsCreated,
		m.actions,
		m.gamesFinished,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) sessionCreated() {
	m.sessionsCreated.Inc()
}

// action counts one command. A terminal state after a successful command
// also counts a finished game.
func (m *Metrics) action(action string, err error, state *engine.GameState) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.actions.WithLabelValues(action, outcome).Inc()

	if err == nil && state != nil && state.State.IsTerminal() {
		m.gamesFinished.WithLabelValues(string(state.State)).Inc()
	}
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// middleware observes request latency labelled with the matched route template
func (m *Metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// websocket upgrades need the raw writer for hijacking
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		m.requestDuration.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}
