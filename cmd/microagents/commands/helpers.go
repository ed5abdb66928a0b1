package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/54b3r/microagents-go/internal/agent"
	"github.com/54b3r/microagents-go/internal/logging"
	"github.com/54b3r/microagents-go/internal/provider"
	"github.com/54b3r/microagents-go/internal/records"
	"github.com/54b3r/microagents-go/internal/store"
)

// defaultDataDir is used when MICROAGENTS_DATA_DIR is unset.
const defaultDataDir = "data"

// historyDisabled is the MICROAGENTS_HISTORY_DB value that turns the
// interaction log off.
const historyDisabled = "disabled"

// dataDir returns the record store root.
func dataDir() string {
	if d := os.Getenv("MICROAGENTS_DATA_DIR"); d != "" {
		return d
	}
	return defaultDataDir
}

// buildAgents constructs the agents from the environment. The default
// provider is validated lazily per request, since callers may supply their
// own provider, model, and key.
func buildAgents(log *slog.Logger) (*agent.Agents, *records.Store, error) {
	providerCfg, err := provider.ConfigFromEnv()
	if err != nil {
		return nil, nil, err
	}
	if err := providerCfg.Validate(); err != nil {
		log.Warn("default provider incomplete, requests must supply their own",
			slog.String("provider", string(providerCfg.Backend)),
			slog.Any("error", err),
		)
	}

	src := records.NewStore(dataDir())
	agents := agent.New(agent.Config{
		Completer:        provider.NewChatCompleter(provider.CompletionTimeoutFromEnv()),
		Provider:         providerCfg,
		MaxContextTokens: envInt("AGENT_MAX_CONTEXT_TOKENS", 0),
	}, src)

	log.Info("agents initialised",
		slog.String("provider", string(providerCfg.Backend)),
		slog.String("model", providerCfg.Model),
		slog.String("data_dir", src.Root()),
	)
	return agents, src, nil
}

// openHistory opens the interaction log. MICROAGENTS_HISTORY_DB overrides
// the default path (~/.microagents/history.db); "disabled" turns it off.
// Failures disable the log rather than the command. The returned close
// function is always safe to call.
func openHistory(log *slog.Logger) (store.InteractionLog, func()) {
	noop := func() {}

	dbPath := os.Getenv("MICROAGENTS_HISTORY_DB")
	if dbPath == historyDisabled {
		log.Info("history: disabled via MICROAGENTS_HISTORY_DB=disabled")
		return nil, noop
	}
	if dbPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			log.Warn("history: could not resolve default DB path, disabling", slog.Any("error", err))
			return nil, noop
		}
		dbPath = p
	}

	hs, err := store.Open(dbPath)
	if err != nil {
		log.Warn("history: failed to open store, disabling", slog.Any("error", err))
		return nil, noop
	}
	log.Debug("history: store opened", slog.String("path", dbPath))
	return hs, func() { _ = hs.Close() }
}

// runAgent executes one agent call for a CLI command and prints the JSON
// response. invalid_input errors are returned as-is; other failures print
// the agent's shaped failure payload and return a non-nil error so the
// process exits non-zero.
func runAgent[Req any, Resp any](
	cmd *cobra.Command,
	name string,
	req Req,
	call func(context.Context, Req) (Resp, error),
	fail func(error) Resp,
	summarize func(Req, Resp) store.Interaction,
) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx).With(slog.String("agent", name))
	ctx = logging.WithLogger(ctx, log)

	history, closeHistory := openHistory(log)
	defer closeHistory()

	resp, err := call(ctx, req)
	var failed error
	if err != nil {
		kind := agent.KindOf(err)
		if kind == agent.KindInvalidInput {
			return fmt.Errorf("%s: %w", name, err)
		}
		resp = fail(err)
		failed = fmt.Errorf("%s: request failed (%s)", name, kind)
	}

	if history != nil {
		in := summarize(req, resp)
		in.Agent = name
		if err := history.Append(context.WithoutCancel(ctx), in); err != nil {
			log.Warn("interaction log append failed", slog.Any("error", err))
		}
	}

	if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
		return err
	}
	return failed
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// addSelectionFlags registers the per-request provider override flags.
func addSelectionFlags(cmd *cobra.Command, sel *agent.LLMSelection) {
	cmd.Flags().StringVar(&sel.LLMProvider, "provider", "", "LLM provider for this request (openrouter, openai, azure, ollama, gemini, ark)")
	cmd.Flags().StringVar(&sel.ModelName, "model", "", "Model name for this request")
	cmd.Flags().StringVar(&sel.APIKey, "api-key", "", "API key for this request (prefer MODEL_API_KEY)")
}

// topKFlag returns a pointer to the --top-k value only when the flag was set,
// so the agent's default applies otherwise.
func topKFlag(cmd *cobra.Command, v int) *int {
	if !cmd.Flags().Changed("top-k") {
		return nil
	}
	return &v
}

// readInline reads an inline dataset file, or returns "" when path is empty.
func readInline(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// envInt returns the integer value of key, or def when unset or invalid.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// envFloat returns the float value of key, or def when unset or invalid.
func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// envOrDefault returns the value of key, or def when unset.
func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
