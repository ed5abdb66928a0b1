// Package config provides file-based configuration for microagents.
// Configuration is loaded with a layered precedence:
// defaults → .env → YAML or TOML file → env vars.
// Environment variables always win, so deployments configured purely through
// the environment are unaffected.
//
// File search order:
//  1. --config CLI flag (explicit path)
//  2. MICROAGENTS_CONFIG environment variable
//  3. ~/.microagents/config.yaml, then ~/.microagents/config.toml
//  4. ./microagents.yaml, then ./microagents.toml
//
// The file format is chosen by extension (.yaml, .yml or .toml).
// If no file is found the system runs entirely from env vars.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DotEnvFile is the dotenv file read from the working directory.
const DotEnvFile = ".env"

// Config is the top-level configuration file structure. Keys mirror the env
// var naming (lowercase, underscored).
type Config struct {
	// Model configures the default LLM backend. Requests may override
	// provider, model, and key.
	Model ModelConfig `yaml:"model" toml:"model"`

	// Data locates the record store.
	Data DataConfig `yaml:"data" toml:"data"`

	// Agent tunes agent pipelines.
	Agent AgentConfig `yaml:"agent" toml:"agent"`

	// Server configures the HTTP server.
	Server ServerConfig `yaml:"server" toml:"server"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging" toml:"logging"`

	// History configures the interaction log.
	History HistoryConfig `yaml:"history" toml:"history"`

	// Tracing configures Langfuse tracing integration.
	Tracing TracingConfig `yaml:"tracing" toml:"tracing"`
}

// ModelConfig holds LLM backend settings.
type ModelConfig struct {
	// Provider selects the backend: openrouter, openai, azure, ollama, gemini, ark.
	Provider string `yaml:"provider" toml:"provider"`
	// Name is the model or deployment name.
	Name string `yaml:"name" toml:"name"`
	// APIKey is the backend credential. Prefer env var MODEL_API_KEY.
	APIKey string `yaml:"api_key" toml:"api_key"`
	// BaseURL overrides the backend endpoint.
	BaseURL string `yaml:"base_url" toml:"base_url"`
	// MaxTokens caps the completion length. Zero leaves it to the backend.
	MaxTokens int `yaml:"max_tokens" toml:"max_tokens"`
	// AzureAPIVersion is the Azure OpenAI API version.
	AzureAPIVersion string `yaml:"azure_api_version" toml:"azure_api_version"`
	// CompletionTimeout bounds one completion, e.g. "60s".
	CompletionTimeout string `yaml:"completion_timeout" toml:"completion_timeout"`
}

// DataConfig holds record store settings.
type DataConfig struct {
	// Dir holds aqi/, pdfs/ and youtube.csv.
	Dir string `yaml:"dir" toml:"dir"`
}

// AgentConfig holds agent pipeline settings.
type AgentConfig struct {
	// MaxContextTokens caps the estimated size of document context.
	MaxContextTokens int `yaml:"max_context_tokens" toml:"max_context_tokens"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the bind address.
	Host string `yaml:"host" toml:"host"`
	// Port is the TCP port.
	Port int `yaml:"port" toml:"port"`
	// APIKey is the Bearer token for the agent routes. Prefer env var
	// MICROAGENTS_API_KEY.
	APIKey string `yaml:"api_key" toml:"api_key"`
	// RateLimit is the per-IP request rate on the agent routes.
	RateLimit float64 `yaml:"rate_limit" toml:"rate_limit"`
	// RateBurst is the per-IP burst on the agent routes.
	RateBurst int `yaml:"rate_burst" toml:"rate_burst"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level" toml:"level"`
	// Format is the log output format: json, text.
	Format string `yaml:"format" toml:"format"`
}

// HistoryConfig holds interaction log settings.
type HistoryConfig struct {
	// DBPath is the SQLite database path. Set to "disabled" to disable.
	DBPath string `yaml:"db_path" toml:"db_path"`
}

// TracingConfig holds Langfuse tracing settings.
type TracingConfig struct {
	// PublicKey is the Langfuse public key. Prefer env var LANGFUSE_PUBLIC_KEY.
	PublicKey string `yaml:"public_key" toml:"public_key"`
	// SecretKey is the Langfuse secret key. Prefer env var LANGFUSE_SECRET_KEY.
	SecretKey string `yaml:"secret_key" toml:"secret_key"`
	// Host is the Langfuse API host.
	Host string `yaml:"host" toml:"host"`
}

// envMapping maps config file fields to their corresponding env var names.
// Only non-empty file values are applied; env vars always take precedence.
var envMapping = []struct {
	envKey string
	value  func(*Config) string
}{
	{"MODEL_PROVIDER", func(c *Config) string { return c.Model.Provider }},
	{"MODEL_NAME", func(c *Config) string { return c.Model.Name }},
	{"MODEL_API_KEY", func(c *Config) string { return c.Model.APIKey }},
	{"MODEL_BASE_URL", func(c *Config) string { return c.Model.BaseURL }},
	{"MODEL_MAX_TOKENS", func(c *Config) string { return intStr(c.Model.MaxTokens) }},
	{"AZURE_OPENAI_API_VERSION", func(c *Config) string { return c.Model.AzureAPIVersion }},
	{"COMPLETION_TIMEOUT", func(c *Config) string { return c.Model.CompletionTimeout }},
	{"MICROAGENTS_DATA_DIR", func(c *Config) string { return c.Data.Dir }},
	{"AGENT_MAX_CONTEXT_TOKENS", func(c *Config) string { return intStr(c.Agent.MaxContextTokens) }},
	{"MICROAGENTS_HOST", func(c *Config) string { return c.Server.Host }},
	{"MICROAGENTS_PORT", func(c *Config) string { return intStr(c.Server.Port) }},
	{"MICROAGENTS_API_KEY", func(c *Config) string { return c.Server.APIKey }},
	{"MICROAGENTS_RATE_LIMIT", func(c *Config) string { return floatStr(c.Server.RateLimit) }},
	{"MICROAGENTS_RATE_BURST", func(c *Config) string { return intStr(c.Server.RateBurst) }},
	{"LOG_LEVEL", func(c *Config) string { return c.Logging.Level }},
	{"LOG_FORMAT", func(c *Config) string { return c.Logging.Format }},
	{"MICROAGENTS_HISTORY_DB", func(c *Config) string { return c.History.DBPath }},
	{"LANGFUSE_PUBLIC_KEY", func(c *Config) string { return c.Tracing.PublicKey }},
	{"LANGFUSE_SECRET_KEY", func(c *Config) string { return c.Tracing.SecretKey }},
	{"LANGFUSE_HOST", func(c *Config) string { return c.Tracing.Host }},
}

// Load reads the config file and the .env file and applies their values as
// environment variables. Existing env vars are never overwritten, and file
// values are applied before .env values so the file wins over .env.
// Returns the config file path that was loaded, or "" if none was found.
func Load(explicitPath string, log *slog.Logger) (string, error) {
	dotenv, err := readDotEnv(DotEnvFile)
	if err != nil {
		return "", err
	}

	path := resolveConfigPath(explicitPath)
	applied := 0
	if path == "" {
		log.Debug("config: no config file found, using env vars only")
	} else {
		cfg, err := parseFile(path)
		if err != nil {
			return "", err
		}
		for _, m := range envMapping {
			if setIfUnset(m.envKey, m.value(cfg)) {
				applied++
			}
		}
		log.Info("config: loaded config file",
			slog.String("path", path),
			slog.Int("keys_applied", applied),
		)
	}

	fromDotEnv := 0
	for k, v := range dotenv {
		if setIfUnset(k, v) {
			fromDotEnv++
		}
	}
	if fromDotEnv > 0 {
		log.Debug("config: applied .env", slog.Int("keys_applied", fromDotEnv))
	}

	return path, nil
}

// parseFile decodes path as YAML or TOML depending on its extension.
func parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return nil, fmt.Errorf("config: unsupported config file extension %q (want .yaml, .yml or .toml)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// readDotEnv returns the key/value pairs in path, or nil if it does not exist.
func readDotEnv(path string) (map[string]string, error) {
	vals, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	return vals, nil
}

// setIfUnset sets key to val unless val is empty or key is already set.
func setIfUnset(key, val string) bool {
	if val == "" {
		return false
	}
	if os.Getenv(key) != "" {
		return false
	}
	os.Setenv(key, val)
	return true
}

// resolveConfigPath returns the first config file path that exists.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		if exists(explicit) {
			return explicit
		}
		return ""
	}

	if envPath := os.Getenv("MICROAGENTS_CONFIG"); envPath != "" && exists(envPath) {
		return envPath
	}

	var candidates []string
	if home, err := os.UserHomeDir(); err == nil {
		dir := filepath.Join(home, ".microagents")
		candidates = append(candidates, filepath.Join(dir, "config.yaml"), filepath.Join(dir, "config.toml"))
	}
	candidates = append(candidates, "microagents.yaml", "microagents.toml")

	for _, p := range candidates {
		if exists(p) {
			return p
		}
	}
	return ""
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// intStr converts an int to string, returning "" for zero values.
func intStr(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

// floatStr converts a float64 to string, returning "" for zero values.
func floatStr(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
