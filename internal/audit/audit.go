// Package audit writes structured audit entries for CLI command starts and
// for requests that bring their own LLM selection, so operators can trace
// which backend served what without exposing credentials.
//
// Secrets are logged as presence or absence only, never their values.
package audit

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// auditEntry is one env var included in the command-start entry.
type auditEntry struct {
	key    string
	secret bool
}

// auditKeys is the ordered list of env vars included in every command-start
// entry.
var auditKeys = []auditEntry{
	{"MODEL_PROVIDER", false},
	{"MODEL_NAME", false},
	{"MODEL_API_KEY", true},
	{"MODEL_BASE_URL", false},
	{"MODEL_MAX_TOKENS", false},
	{"AZURE_OPENAI_API_VERSION", false},
	{"COMPLETION_TIMEOUT", false},
	{"MICROAGENTS_DATA_DIR", false},
	{"AGENT_MAX_CONTEXT_TOKENS", false},
	{"MICROAGENTS_API_KEY", true},
	{"MICROAGENTS_HISTORY_DB", false},
	{"LOG_LEVEL", false},
	{"LOG_FORMAT", false},
	{"LANGFUSE_HOST", false},
	{"LANGFUSE_PUBLIC_KEY", true},
	{"LANGFUSE_SECRET_KEY", true},
}

// secretEnvKeys is derived from auditKeys.
var secretEnvKeys = func() map[string]bool {
	m := make(map[string]bool)
	for _, e := range auditKeys {
		if e.secret {
			m[e.key] = true
		}
	}
	return m
}()

// LogCommandStart records the command name, the config file in effect and
// the sanitised environment.
func LogCommandStart(ctx context.Context, log *slog.Logger, command string, configPath string) {
	attrs := []slog.Attr{
		slog.String("command", command),
		slog.String("config_file", sanitiseConfigPath(configPath)),
	}
	for _, e := range auditKeys {
		attrs = append(attrs, slog.String(e.key, SanitiseKey(e.key, os.Getenv(e.key))))
	}
	log.LogAttrs(ctx, slog.LevelInfo, "audit: command start", attrs...)
}

// Override describes the llm_provider / model_name / api_key fields of one
// agent request.
type Override struct {
	Provider string
	Model    string
	APIKey   string
}

// Empty reports whether the request relies entirely on server defaults.
func (o Override) Empty() bool {
	return o.Provider == "" && o.Model == "" && o.APIKey == ""
}

// LogOverride records a request that selects its own backend, model or
// credential. The resolved backend and model are logged as-is; the
// credential only as presence. Requests without an override are not logged.
func LogOverride(ctx context.Context, log *slog.Logger, op string, o Override, backend, model string) {
	if o.Empty() {
		return
	}
	log.LogAttrs(ctx, slog.LevelInfo, "audit: llm override",
		slog.String("op", op),
		slog.String("requested_provider", valOrUnset(o.Provider)),
		slog.String("requested_model", valOrUnset(o.Model)),
		slog.String("api_key", presence(o.APIKey)),
		slog.String("backend", backend),
		slog.String("model", model),
	)
}

// SanitiseKey returns "set" or "unset" for known secret keys, or the value
// (or "unset") for everything else.
func SanitiseKey(key, value string) string {
	if secretEnvKeys[key] {
		return presence(value)
	}
	return valOrUnset(value)
}

func presence(v string) string {
	if v != "" {
		return "set"
	}
	return "unset"
}

func valOrUnset(v string) string {
	if v != "" {
		return v
	}
	return "unset"
}

// sanitiseConfigPath returns p with the home directory folded to "~", or
// "none" when empty.
func sanitiseConfigPath(p string) string {
	if p == "" {
		return "none"
	}
	home, err := os.UserHomeDir()
	if err == nil && strings.HasPrefix(p, home) {
		return "~" + p[len(home):]
	}
	return p
}
