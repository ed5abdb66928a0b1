package commands

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/54b3r/microagents-go/internal/logging"
	"github.com/54b3r/microagents-go/internal/server"
	"github.com/54b3r/microagents-go/internal/tracing"
	"github.com/54b3r/microagents-go/internal/version"
)

// NewServeCmd constructs the `microagents serve` command, which starts the
// HTTP API in front of the agents.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the microagents HTTP server",
		Long: `Start the microagents HTTP server.

Routes:
  POST /aqi/query           air-quality Q&A
  POST /pdfs/query          document Q&A with citations
  POST /youtube/recommend   follow-up video ideas
  GET  /api/health          liveness
  GET  /api/ready           readiness (data directory, interaction log)
  GET  /api/history         recent interactions
  GET  /metrics             Prometheus metrics

Set MICROAGENTS_API_KEY to require a Bearer token on the agent routes.

Examples:
  microagents serve
  microagents serve --port 9090
  MODEL_PROVIDER=ollama MODEL_NAME=llama3.2 microagents serve`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.FromContext(ctx)
			log.Info("serve starting", slog.String("version", version.String()))

			// Langfuse tracing is opt-in and a no-op if keys are absent.
			flush, ok := tracing.Install(tracing.ConfigFromEnv())
			defer flush()
			if ok {
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY or LANGFUSE_SECRET_KEY not set"))
			}

			agents, src, err := buildAgents(log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			pingers := []server.Pinger{server.NewDependencyPinger("data_dir", src)}

			history, closeHistory := openHistory(log)
			defer closeHistory()
			if history != nil {
				pingers = append(pingers, server.NewDependencyPinger("history", history))
			}

			if !cmd.Flags().Changed("host") {
				host = envOrDefault("MICROAGENTS_HOST", host)
			}
			if !cmd.Flags().Changed("port") {
				port = envInt("MICROAGENTS_PORT", port)
			}

			srv, err := server.New(agents, &server.Config{
				Host:      host,
				Port:      port,
				Logger:    log,
				Pingers:   pingers,
				History:   history,
				RateLimit: envFloat("MICROAGENTS_RATE_LIMIT", 0),
				RateBurst: envInt("MICROAGENTS_RATE_BURST", 0),
				APIKey:    envOrDefault("MICROAGENTS_API_KEY", ""),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8000, "TCP port to listen on")

	return cmd
}
