package provider

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cloudwego/eino/components/model"
)

// DefaultCompletionTimeout bounds a single completion call.
const DefaultCompletionTimeout = 60 * time.Second

// ConfigFromEnv resolves the server-wide default provider configuration.
// Per-request fields override it through [Config.WithOverrides].
//
// Environment variables:
//
//	MODEL_PROVIDER           = openrouter | openai | azure | ollama | gemini | ark (default: openrouter)
//	MODEL_NAME               (default: minimax/minimax-m2:free)
//	MODEL_API_KEY            credential for the selected backend
//	MODEL_BASE_URL           endpoint override (Azure endpoint, Ollama host, Ark region URL)
//	MODEL_MAX_TOKENS         (default: 0, provider default)
//	AZURE_OPENAI_API_VERSION (default: 2024-06-01)
//
// An unknown MODEL_PROVIDER is reported as an error rather than silently
// replaced.
func ConfigFromEnv() (Config, error) {
	b, err := ParseBackend(os.Getenv("MODEL_PROVIDER"))
	if err != nil {
		return Config{}, err
	}
	return Config{
		Backend:         b,
		Model:           getEnvOrDefault("MODEL_NAME", DefaultModel),
		APIKey:          os.Getenv("MODEL_API_KEY"),
		BaseURL:         os.Getenv("MODEL_BASE_URL"),
		AzureAPIVersion: getEnvOrDefault("AZURE_OPENAI_API_VERSION", "2024-06-01"),
		MaxTokens:       getEnvInt("MODEL_MAX_TOKENS", 0),
	}, nil
}

// CompletionTimeoutFromEnv reads COMPLETION_TIMEOUT as a Go duration
// ("45s") or a whole number of seconds ("45").
func CompletionTimeoutFromEnv() time.Duration {
	v := os.Getenv("COMPLETION_TIMEOUT")
	if v == "" {
		return DefaultCompletionTimeout
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return DefaultCompletionTimeout
}

// New constructs a chat model from an explicit Config, delegating to the
// appropriate backend constructor. It validates the config first so callers
// get a clear error instead of an opaque transport failure.
func New(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendOpenRouter:
		return newOpenRouter(ctx, cfg)
	case BackendOpenAI:
		return newOpenAI(ctx, cfg)
	case BackendAzure:
		return newAzure(ctx, cfg)
	case BackendOllama:
		return newOllama(ctx, cfg)
	case BackendGemini:
		return newGemini(ctx, cfg)
	case BackendArk:
		return newArk(ctx, cfg)
	default:
		return nil, fmt.Errorf("provider: unknown backend %q: valid values: %s", cfg.Backend, validBackends())
	}
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
