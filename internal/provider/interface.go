// Package provider is the completion client used by every agent. It selects
// and constructs an Eino chat model per call from a [Config] and sends a single
// prompt to it. No client is cached between calls: each request may name its
// own backend, model and credential.
//
// Supported backends: OpenRouter, OpenAI, Azure OpenAI, Ollama, Google Gemini
// and Volcengine Ark.
package provider

import (
	"fmt"
	"strings"
)

// Backend enumerates the supported LLM inference providers.
type Backend string

const (
	// BackendOpenRouter selects OpenRouter through its OpenAI-compatible API.
	BackendOpenRouter Backend = "openrouter"
	// BackendOpenAI selects the OpenAI API.
	BackendOpenAI Backend = "openai"
	// BackendAzure selects Azure OpenAI Service.
	BackendAzure Backend = "azure"
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
	// BackendGemini selects Google Gemini via AI Studio.
	BackendGemini Backend = "gemini"
	// BackendArk selects the Volcengine Ark model runtime.
	BackendArk Backend = "ark"
)

// DefaultBackend is used when neither the request nor the environment names
// a provider.
const DefaultBackend = BackendOpenRouter

// DefaultModel is the model used when none is configured.
const DefaultModel = "minimax/minimax-m2:free"

// openRouterBaseURL is the OpenAI-compatible endpoint of OpenRouter.
const openRouterBaseURL = "https://openrouter.ai/api/v1"

var backends = []Backend{BackendOpenRouter, BackendOpenAI, BackendAzure, BackendOllama, BackendGemini, BackendArk}

// ParseBackend matches s case-insensitively against the known backends, so
// "OpenRouter" and "OpenAI" as sent by browser clients are accepted.
// An empty string yields DefaultBackend.
func ParseBackend(s string) (Backend, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultBackend, nil
	}
	for _, b := range backends {
		if string(b) == s {
			return b, nil
		}
	}
	return "", fmt.Errorf("provider: unknown backend %q: valid values: %s", s, validBackends())
}

func validBackends() string {
	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = string(b)
	}
	return strings.Join(names, ", ")
}

// Config holds provider-level configuration resolved from environment
// variables, config files, or per-request overrides.
type Config struct {
	// Backend identifies which inference provider to use.
	Backend Backend

	// Model is the model name or, for Azure, the deployment name.
	Model string

	// APIKey is the authentication credential for the selected provider.
	// Ollama ignores it.
	APIKey string

	// BaseURL overrides the default API endpoint. Required for Azure.
	BaseURL string

	// AzureAPIVersion is the Azure OpenAI REST API version (Azure only).
	AzureAPIVersion string

	// MaxTokens caps the number of tokens the model may generate per
	// response. Zero leaves the provider default in place.
	MaxTokens int
}

// Validate reports configuration that would fail at the first request.
func (c Config) Validate() error {
	if _, err := ParseBackend(string(c.Backend)); err != nil {
		return err
	}
	if c.Model == "" {
		return fmt.Errorf("provider: MODEL_NAME is required for %s backend", c.Backend)
	}
	if c.Backend != BackendOllama && c.APIKey == "" {
		return fmt.Errorf("provider: MODEL_API_KEY is required for %s backend", c.Backend)
	}
	if c.Backend == BackendAzure && c.BaseURL == "" {
		return fmt.Errorf("provider: MODEL_BASE_URL (Azure endpoint) is required for azure backend")
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("provider: MODEL_MAX_TOKENS must not be negative")
	}
	return nil
}

// backendDefaultModels is the model used after a request switches to a
// backend without naming one. Azure deployments and Ark endpoints have no
// sensible default.
var backendDefaultModels = map[Backend]string{
	BackendOpenRouter: DefaultModel,
	BackendOpenAI:     "gpt-4o-mini",
	BackendOllama:     "llama3.2",
	BackendGemini:     "gemini-2.0-flash",
}

// WithOverrides returns a copy of c with any non-empty request fields
// applied.
//
// Switching to a backend other than the configured one drops everything that
// belongs to the configured backend: credential, model, endpoint and API
// version. The model falls back to the backend's default and the credential
// must come from the request, so the switched config is validated here.
func (c Config) WithOverrides(backend, model, apiKey string) (Config, error) {
	out := c
	current := c.Backend
	if current == "" {
		current = DefaultBackend
	}
	switched := false
	if strings.TrimSpace(backend) != "" {
		b, err := ParseBackend(backend)
		if err != nil {
			return Config{}, err
		}
		if b != current {
			switched = true
			out.APIKey = ""
			out.Model = backendDefaultModels[b]
			out.BaseURL = ""
			out.AzureAPIVersion = ""
		}
		out.Backend = b
	}
	if model != "" {
		out.Model = model
	}
	if apiKey != "" {
		out.APIKey = apiKey
	}
	if out.Backend == "" {
		out.Backend = DefaultBackend
	}
	if out.Model == "" && !switched {
		out.Model = DefaultModel
	}
	if switched {
		if err := out.Validate(); err != nil {
			return Config{}, fmt.Errorf("provider: request switches to %s: %w", out.Backend, err)
		}
	}
	return out, nil
}
