package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// fakeModel is a BaseChatModel returning a canned reply and recording the
// options it was called with.
type fakeModel struct {
	reply string
	err   error
	temp  *float32
	input []*schema.Message
}

func (f *fakeModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.input = input
	f.temp = model.GetCommonOptions(&model.Options{}, opts...).Temperature
	if f.err != nil {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func completerWith(m *fakeModel) *ChatCompleter {
	return &ChatCompleter{
		Timeout: time.Second,
		NewModel: func(context.Context, Config) (model.BaseChatModel, error) {
			return m, nil
		},
	}
}

func TestComplete_SendsPromptWithTemperature(t *testing.T) {
	t.Parallel()

	m := &fakeModel{reply: "  it is fine outside  "}
	got, err := completerWith(m).Complete(context.Background(), Request{
		Provider:    Config{Backend: BackendOpenAI, Model: "gpt-4o-mini", APIKey: "k"},
		Prompt:      "hello",
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "it is fine outside" {
		t.Errorf("Complete() = %q, want trimmed reply", got)
	}
	if len(m.input) != 1 || m.input[0].Role != schema.User || m.input[0].Content != "hello" {
		t.Errorf("unexpected input messages: %+v", m.input)
	}
	if m.temp == nil || *m.temp != 0.7 {
		t.Errorf("temperature = %v, want 0.7", m.temp)
	}
}

func TestComplete_AzureReasoningModelOmitsTemperature(t *testing.T) {
	t.Parallel()

	m := &fakeModel{reply: "ok"}
	_, err := completerWith(m).Complete(context.Background(), Request{
		Provider:    Config{Backend: BackendAzure, Model: "o3-mini", APIKey: "k", BaseURL: "https://x"},
		Prompt:      "p",
		Temperature: 0.1,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if m.temp != nil {
		t.Errorf("temperature must not be sent to reasoning models, got %v", *m.temp)
	}
}

func TestComplete_ErrorsAreCompletionErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		c    *ChatCompleter
		want error
	}{
		{
			name: "model error",
			c:    completerWith(&fakeModel{err: errors.New("boom")}),
		},
		{
			name: "empty reply",
			c:    completerWith(&fakeModel{reply: "   "}),
			want: ErrEmptyCompletion,
		},
		{
			name: "invalid config",
			c:    &ChatCompleter{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := tc.c.Complete(context.Background(), Request{
				Provider: Config{Backend: BackendOpenRouter, Model: "m"},
				Prompt:   "p",
			})
			var ce *CompletionError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *CompletionError, got %T: %v", err, err)
			}
			if ce.Backend != BackendOpenRouter || ce.Model != "m" {
				t.Errorf("CompletionError = %+v", ce)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("expected errors.Is(%v), got %v", tc.want, err)
			}
		})
	}
}

func TestComplete_CallerCancellationIsDetectable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := completerWith(&fakeModel{reply: "late"}).Complete(ctx, Request{
		Provider: Config{Backend: BackendOllama, Model: "llama3"},
		Prompt:   "p",
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// openAICompatible serves a minimal /chat/completions endpoint.
func openAICompatible(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q, want bearer credential", got)
		}
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		if req["model"] != "test-model" {
			t.Errorf("model = %v, want test-model", req["model"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = io.WriteString(w, `{"error":{"message":"upstream exploded","type":"server_error"}}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestComplete_OpenAICompatibleServer(t *testing.T) {
	t.Parallel()

	srv := openAICompatible(t, http.StatusOK, "Moderate air today.")
	got, err := NewChatCompleter(5*time.Second).Complete(context.Background(), Request{
		Provider:    Config{Backend: BackendOpenAI, Model: "test-model", APIKey: "sk-test", BaseURL: srv.URL},
		Prompt:      "How is the air?",
		Temperature: 0.1,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "Moderate air today." {
		t.Errorf("Complete() = %q", got)
	}
}

func TestComplete_OpenAICompatibleServerError(t *testing.T) {
	t.Parallel()

	srv := openAICompatible(t, http.StatusInternalServerError, "")
	_, err := NewChatCompleter(5*time.Second).Complete(context.Background(), Request{
		Provider: Config{Backend: BackendOpenAI, Model: "test-model", APIKey: "sk-test", BaseURL: srv.URL},
		Prompt:   "How is the air?",
	})
	var ce *CompletionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CompletionError, got %T: %v", err, err)
	}
}
