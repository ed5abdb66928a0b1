package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/54b3r/microagents-go/internal/ingestion"
	"github.com/54b3r/microagents-go/internal/provider"
)

func TestDocumentAnswer_ZeroMatchesSkipsCompletion(t *testing.T) {
	t.Parallel()

	c := &fakeCompleter{}
	resp, err := NewDocumentAgent(testConfig(c), &fakeSource{docs: sampleDocs}).Answer(context.Background(), DocumentRequest{
		Question: "quantum chromodynamics",
	})
	require.NoError(t, err)

	assert.Equal(t, InsufficientContextAnswer, resp.Answer)
	assert.NotNil(t, resp.Citations)
	assert.Empty(t, resp.Citations)
	assert.Equal(t, OutcomeInsufficientContext, resp.Outcome)
	assert.Zero(t, c.callCount())
}

func TestDocumentAnswer_EmptyCorpus(t *testing.T) {
	t.Parallel()

	c := &fakeCompleter{}
	resp, err := NewDocumentAgent(testConfig(c), &fakeSource{}).Answer(context.Background(), DocumentRequest{Question: "agents"})
	require.NoError(t, err)
	assert.Empty(t, resp.Citations)
	assert.Zero(t, c.callCount())
}

func TestDocumentAnswer_CitesRankedChunks(t *testing.T) {
	t.Parallel()

	c := &fakeCompleter{answers: []string{"Agents use tools."}}
	resp, err := NewDocumentAgent(testConfig(c), &fakeSource{docs: sampleDocs}).Answer(context.Background(), DocumentRequest{
		Question: "How do agents use tools?",
		TopK:     intPtr(5),
	})
	require.NoError(t, err)

	assert.Equal(t, "Agents use tools.", resp.Answer)
	require.Len(t, resp.Citations, 1, "only the AI guide mentions agents or tools")
	assert.Equal(t, 1, resp.Citations[0].Rank)
	assert.Equal(t, "guide_ai.txt", resp.Citations[0].Source)
	assert.Greater(t, resp.Citations[0].Score, 0.0)
	assert.True(t, strings.HasSuffix(resp.Citations[0].ContentPreview, "..."))
	assert.Len(t, []rune(resp.Citations[0].ContentPreview), previewLength+3)

	require.Equal(t, 1, c.callCount())
	assert.Contains(t, c.calls[0].Prompt, "Agents use tools to answer questions grounded in data.")
	assert.Contains(t, c.calls[0].Prompt, "Question: How do agents use tools?")
	assert.Equal(t, float32(0.1), c.calls[0].Temperature)
}

func TestDocumentAnswer_RespectsTopKAndOrder(t *testing.T) {
	t.Parallel()

	docs := []ingestion.Document{
		{SourceID: "a.txt", Text: "valley weather"},
		{SourceID: "b.txt", Text: "valley weather valley weather layers"},
		{SourceID: "c.txt", Text: "valley"},
	}
	resp, err := NewDocumentAgent(testConfig(&fakeCompleter{}), &fakeSource{docs: docs}).Answer(context.Background(), DocumentRequest{
		Question: "valley weather",
		TopK:     intPtr(2),
	})
	require.NoError(t, err)
	require.Len(t, resp.Citations, 2)
	assert.Equal(t, []int{1, 2}, []int{resp.Citations[0].Rank, resp.Citations[1].Rank})
	assert.GreaterOrEqual(t, resp.Citations[0].Score, resp.Citations[1].Score)
	assert.Equal(t, "a.txt", resp.Citations[0].Source)
}

func TestDocumentAnswer_BudgetDropsLowestRanked(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("agents tools ", 80) // ~1040 chars, ~260 tokens
	docs := []ingestion.Document{
		{SourceID: "one.txt", Text: long},
		{SourceID: "two.txt", Text: long + "more"},
	}
	cfg := testConfig(&fakeCompleter{})
	cfg.MaxContextTokens = 300
	cfg.Splitter = ingestion.NewSplitter(&ingestion.Config{ChunkSize: 2000, ChunkOverlap: 100})

	resp, err := NewDocumentAgent(cfg, &fakeSource{docs: docs}).Answer(context.Background(), DocumentRequest{Question: "agents tools"})
	require.NoError(t, err)
	assert.Len(t, resp.Citations, 1)
}

func TestDocumentAnswer_CompletionFailure(t *testing.T) {
	t.Parallel()

	c := &fakeCompleter{err: &provider.CompletionError{Backend: "openai", Model: "m", Err: errors.New("invalid api key")}}
	resp, err := NewDocumentAgent(testConfig(c), &fakeSource{docs: sampleDocs}).Answer(context.Background(), DocumentRequest{
		Question: "agents",
	})
	assert.Nil(t, resp)
	assert.Equal(t, KindCompletion, KindOf(err))

	shaped := DocumentFailure(err)
	assert.True(t, strings.HasPrefix(shaped.Answer, "Error processing document query: "))
	assert.True(t, strings.HasSuffix(shaped.Answer, "Please check your API key and try again."))
	assert.NotNil(t, shaped.Citations)
	assert.Empty(t, shaped.Citations)
	assert.Equal(t, KindCompletion, shaped.ErrorKind)
}

func TestDocumentAnswer_Validation(t *testing.T) {
	t.Parallel()

	a := NewDocumentAgent(testConfig(&fakeCompleter{}), &fakeSource{})
	_, err := a.Answer(context.Background(), DocumentRequest{})
	assert.Equal(t, KindInvalidInput, KindOf(err))

	_, err = a.Answer(context.Background(), DocumentRequest{Question: "q", TopK: intPtr(0)})
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestDocumentAnswer_LoadErrorIsInternal(t *testing.T) {
	t.Parallel()

	_, err := NewDocumentAgent(testConfig(&fakeCompleter{}), &fakeSource{err: errors.New("permission denied")}).
		Answer(context.Background(), DocumentRequest{Question: "agents"})
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestPreview(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", preview("short", 10))
	assert.Equal(t, "abc...", preview("abcdef", 3))
	assert.Equal(t, "ééé...", preview("éééé", 3))
}
