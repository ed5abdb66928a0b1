package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/54b3r/microagents-go/internal/budget"
	"github.com/54b3r/microagents-go/internal/logging"
)

// ErrEmptyCompletion is returned when the model answers with no text.
var ErrEmptyCompletion = errors.New("provider: empty completion")

// CompletionError wraps any failure talking to the model: construction,
// transport, provider-side errors, timeouts and empty answers.
type CompletionError struct {
	Backend Backend
	Model   string
	Err     error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("provider: %s/%s completion failed: %v", e.Backend, e.Model, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// Request is one completion call.
type Request struct {
	// Provider selects backend, model and credential for this call only.
	Provider Config
	// Prompt is sent as a single user message.
	Prompt string
	// Temperature controls response randomness.
	Temperature float32
	// Name labels the call in traces, e.g. "aqi" or "video".
	Name string
}

// ChatCompleter sends single-turn prompts to a freshly constructed model.
// The zero value is usable and applies DefaultCompletionTimeout.
type ChatCompleter struct {
	// Timeout bounds each call. Zero means DefaultCompletionTimeout.
	Timeout time.Duration
	// NewModel overrides the backend factory. Nil means [New].
	NewModel func(ctx context.Context, cfg Config) (model.BaseChatModel, error)
}

// NewChatCompleter returns a completer with the given per-call timeout.
func NewChatCompleter(timeout time.Duration) *ChatCompleter {
	return &ChatCompleter{Timeout: timeout}
}

// Complete sends req.Prompt and returns the trimmed response text. A single
// attempt is made; every failure is returned as *CompletionError. Caller
// cancellation remains detectable with errors.Is(err, context.Canceled).
func (c *ChatCompleter) Complete(ctx context.Context, req Request) (string, error) {
	cfg := req.Provider
	fail := func(err error) (string, error) {
		return "", &CompletionError{Backend: cfg.Backend, Model: cfg.Model, Err: err}
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultCompletionTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	name := req.Name
	if name == "" {
		name = "completion"
	}
	ctx = callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
		Name:      "microagents." + name,
		Type:      string(cfg.Backend),
		Component: components.ComponentOfChatModel,
	})

	newModel := c.NewModel
	if newModel == nil {
		newModel = New
	}
	cm, err := newModel(ctx, cfg)
	if err != nil {
		return fail(err)
	}

	var opts []model.Option
	if !(cfg.Backend == BackendAzure && isAzureReasoningModel(cfg.Model)) {
		opts = append(opts, model.WithTemperature(req.Temperature))
	}

	input := []*schema.Message{schema.UserMessage(req.Prompt)}

	log := logging.FromContext(ctx)
	log.Debug("completion: sending prompt",
		slog.String("backend", string(cfg.Backend)),
		slog.String("model", cfg.Model),
		slog.Int("est_prompt_tokens", budget.EstimateMessages(input)),
	)

	start := time.Now()
	msg, err := cm.Generate(ctx, input, opts...)
	if err != nil {
		return fail(err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return fail(ErrEmptyCompletion)
	}

	log.Debug("completion: received response",
		slog.String("backend", string(cfg.Backend)),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("est_response_tokens", budget.Estimate(msg.Content)),
	)
	return strings.TrimSpace(msg.Content), nil
}
