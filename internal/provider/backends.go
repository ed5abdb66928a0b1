package provider

import (
	"context"
	"fmt"
	"strings"

	einoark "github.com/cloudwego/eino-ext/components/model/ark"
	einogemini "github.com/cloudwego/eino-ext/components/model/gemini"
	einoollama "github.com/cloudwego/eino-ext/components/model/ollama"
	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

// maxTokensPtr returns nil when no cap is configured so the provider
// default applies.
func maxTokensPtr(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

// newOpenRouter constructs a chat model against OpenRouter's
// OpenAI-compatible endpoint. MODEL_BASE_URL may point at a proxy.
func newOpenRouter(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openRouterBaseURL
	}
	return einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{ //nolint:wrapcheck // constructor passthrough
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		BaseURL:   baseURL,
		MaxTokens: maxTokensPtr(cfg.MaxTokens),
	})
}

// newOpenAI constructs a chat model backed by the OpenAI API. BaseURL is
// honoured so any OpenAI-compatible server can be targeted.
func newOpenAI(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
	return einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{ //nolint:wrapcheck // constructor passthrough
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		MaxTokens: maxTokensPtr(cfg.MaxTokens),
	})
}

// newAzure constructs a chat model backed by Azure OpenAI Service. Model is
// the deployment name.
func newAzure(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
	return einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{ //nolint:wrapcheck // constructor passthrough
		Model:      cfg.Model,
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		ByAzure:    true,
		APIVersion: cfg.AzureAPIVersion,
		MaxTokens:  maxTokensPtr(cfg.MaxTokens),
		// Use the deployment name as-is; the default mapper strips dots and
		// colons which breaks deployment names like "gpt-4.1".
		AzureModelMapperFunc: func(model string) string { return model },
	})
}

// isAzureReasoningModel reports whether deployment names an o-series or
// codex reasoning model. These reject a temperature parameter.
func isAzureReasoningModel(deployment string) bool {
	d := strings.ToLower(deployment)
	for _, p := range []string{"o1", "o3", "o4", "codex"} {
		if d == p || strings.HasPrefix(d, p+"-") {
			return true
		}
	}
	return false
}

// newOllama constructs a chat model backed by a local Ollama instance.
func newOllama(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return einoollama.NewChatModel(ctx, &einoollama.ChatModelConfig{ //nolint:wrapcheck // constructor passthrough
		BaseURL: baseURL,
		Model:   cfg.Model,
	})
}

// newGemini constructs a chat model backed by Google Gemini (AI Studio).
func newGemini(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("provider: failed to create Gemini client: %w", err)
	}
	return einogemini.NewChatModel(ctx, &einogemini.Config{ //nolint:wrapcheck // constructor passthrough
		Client:    client,
		Model:     cfg.Model,
		MaxTokens: maxTokensPtr(cfg.MaxTokens),
	})
}

// newArk constructs a chat model on the Volcengine Ark runtime. Model is the
// Ark endpoint ID.
func newArk(ctx context.Context, cfg Config) (model.BaseChatModel, error) {
	return einoark.NewChatModel(ctx, &einoark.ChatModelConfig{ //nolint:wrapcheck // constructor passthrough
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		MaxTokens: maxTokensPtr(cfg.MaxTokens),
	})
}
