package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/54b3r/microagents-go/internal/agent"
	"github.com/54b3r/microagents-go/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8000).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response. It must
	// cover the slowest agent: one completion per video recommendation.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// MaxBodyBytes caps request bodies, which may carry inline datasets.
	// Defaults to 8 MiB if zero.
	MaxBodyBytes int64
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on the agent
	// routes (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on the agent routes and
	// /api/history. If empty, authentication is disabled (development mode).
	APIKey string
	// History receives one entry per agent request. Nil disables the log
	// and GET /api/history reports it as disabled.
	History store.InteractionLog
	// MetricsRegistry is where server metrics are registered.
	// Defaults to prometheus.DefaultRegisterer.
	MetricsRegistry prometheus.Registerer
	// MetricsGatherer backs GET /metrics. Defaults to prometheus.DefaultGatherer.
	MetricsGatherer prometheus.Gatherer
}

// aqiAnswerer is implemented by *agent.AQIAgent; tests inject a fake.
type aqiAnswerer interface {
	Answer(ctx context.Context, req agent.AQIRequest) (*agent.AQIResponse, error)
}

// documentAnswerer is implemented by *agent.DocumentAgent.
type documentAnswerer interface {
	Answer(ctx context.Context, req agent.DocumentRequest) (*agent.DocumentResponse, error)
}

// videoRecommender is implemented by *agent.VideoAgent.
type videoRecommender interface {
	Recommend(ctx context.Context, req agent.VideoRequest) (*agent.VideoResponse, error)
}

// Server is the HTTP server in front of the agents.
type Server struct {
	aqi    aqiAnswerer
	docs   documentAnswerer
	videos videoRecommender
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// history is the interaction log; nil when disabled.
	history store.InteractionLog
	// metrics holds the Prometheus collectors owned by this server.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// rootResponse is the JSON body for GET /.
type rootResponse struct {
	OK     bool     `json:"ok"`
	Routes []string `json:"routes"`
}

// errorResponse is the JSON body of every 4xx/5xx produced by the server
// itself. Agent failures are never reported this way.
type errorResponse struct {
	Error     string     `json:"error"`
	ErrorKind agent.Kind `json:"error_kind,omitempty"`
}

// historyResponse is the JSON body for GET /api/history.
type historyResponse struct {
	// Enabled is false when the server runs without an interaction log.
	Enabled      bool                `json:"enabled"`
	Interactions []store.Interaction `json:"interactions"`
}
