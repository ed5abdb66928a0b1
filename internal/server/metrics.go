package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// labelHandler partitions HTTP metrics by logical endpoint name rather than
// the raw URL path.
const labelHandler = "handler"

// serverMetrics holds all Prometheus metrics owned by the HTTP server.
// A single instance is created in New and stored on Server so that tests can
// inject a fresh prometheus.Registry without polluting the default one.
type serverMetrics struct {
	// agentRequestsTotal counts agent requests by agent and outcome
	// ("ok", "fallback", "not_found", "insufficient_context", or an error kind).
	agentRequestsTotal *prometheus.CounterVec

	// agentDurationSeconds records agent request latency, completion calls
	// included.
	agentDurationSeconds *prometheus.HistogramVec

	// rateLimitedTotal counts requests rejected by the rate limiter.
	rateLimitedTotal *prometheus.CounterVec

	// httpRequestsTotal counts all HTTP requests handled by the mux,
	// partitioned by method, handler, and status code.
	httpRequestsTotal *prometheus.CounterVec

	// httpDurationSeconds records the latency of all HTTP requests.
	httpDurationSeconds *prometheus.HistogramVec
}

// newServerMetrics registers all server metrics against reg. promauto.With(reg)
// registers into the provided registry rather than the global default, which
// keeps unit tests hermetic.
func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	factory := promauto.With(reg)

	return &serverMetrics{
		agentRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "microagents",
			Subsystem: "agent",
			Name:      "requests_total",
			Help:      "Total number of agent requests, partitioned by agent and outcome.",
		}, []string{"agent", "outcome"}),

		agentDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "microagents",
			Subsystem: "agent",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of agent requests, including LLM completions.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
		}, []string{"agent"}),

		rateLimitedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "microagents",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected with 429, partitioned by handler.",
		}, []string{labelHandler}),

		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "microagents",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled by the server, partitioned by method, handler, and status code.",
		}, []string{"method", labelHandler, "code"}),

		httpDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "microagents",
			Subsystem: "http",
			Name:      "duration_seconds",
			Help:      "Latency of HTTP requests handled by the server.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", labelHandler}),
	}
}

// observe records one finished agent request.
func (s *Server) observe(agentName, outcome string, start time.Time) {
	s.metrics.agentRequestsTotal.WithLabelValues(agentName, outcome).Inc()
	s.metrics.agentDurationSeconds.WithLabelValues(agentName).Observe(time.Since(start).Seconds())
}

// instrument wraps next with the HTTP request counter and latency histogram
// under the given handler label.
func (s *Server) instrument(name string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rw, r)
		s.metrics.httpRequestsTotal.WithLabelValues(r.Method, name, strconv.Itoa(rw.status)).Inc()
		s.metrics.httpDurationSeconds.WithLabelValues(r.Method, name).Observe(time.Since(start).Seconds())
	})
}
