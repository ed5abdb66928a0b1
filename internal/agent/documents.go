package agent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/54b3r/microagents-go/internal/budget"
	"github.com/54b3r/microagents-go/internal/ingestion"
	"github.com/54b3r/microagents-go/internal/logging"
	"github.com/54b3r/microagents-go/internal/prompt"
	"github.com/54b3r/microagents-go/internal/provider"
	"github.com/54b3r/microagents-go/internal/rank"
)

// previewLength is the number of characters shown per citation.
const previewLength = 200

// InsufficientContextAnswer is returned when no document chunk relates to
// the question. No completion is made in that case.
const InsufficientContextAnswer = "I couldn't find anything in the available documents related to your question, so I can't answer it from the document collection. Try rephrasing the question or adding documents that cover the topic."

// DocumentAgent answers questions grounded in the document corpus.
type DocumentAgent struct {
	base
	source    DocumentSource
	splitter  *ingestion.Splitter
	maxTokens int
}

// NewDocumentAgent returns a document agent reading from src.
func NewDocumentAgent(cfg Config, src DocumentSource) *DocumentAgent {
	splitter := cfg.Splitter
	if splitter == nil {
		splitter = ingestion.NewSplitter(nil)
	}
	return &DocumentAgent{
		base:      newBase(cfg),
		source:    src,
		splitter:  splitter,
		maxTokens: maxContextTokens(cfg),
	}
}

// Answer chunks the corpus, ranks chunks against the question and answers
// from the best ones. Only chunks sharing at least one term with the
// question are used; when none do, InsufficientContextAnswer is returned
// with no citations. A failed completion is returned as a KindCompletion
// error.
func (a *DocumentAgent) Answer(ctx context.Context, req DocumentRequest) (*DocumentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	cfg, err := a.resolveProvider(ctx, "documents.provider", req.LLMSelection)
	if err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx).With(slog.String("agent", "documents"))

	docs, err := a.source.LoadDocuments(ctx)
	if err != nil {
		return nil, wrap(ctx, "documents.load", err)
	}
	chunks := a.splitter.SplitAll(docs)

	corpus := make([]string, len(chunks))
	for i, c := range chunks {
		corpus[i] = c.Text
	}

	var (
		selected []ingestion.Chunk
		scores   []float64
		texts    []string
	)
	for _, r := range rank.Rank(req.Question, corpus, topK(req.TopK)) {
		if r.Score <= 0 {
			continue
		}
		selected = append(selected, chunks[r.Index])
		scores = append(scores, r.Score)
		texts = append(texts, chunks[r.Index].Text)
	}

	if len(selected) == 0 {
		log.Info("documents: no matching chunks",
			slog.Int("documents", len(docs)),
			slog.Int("chunks", len(chunks)),
		)
		return &DocumentResponse{
			Answer:    InsufficientContextAnswer,
			Citations: []Citation{},
			Outcome:   OutcomeInsufficientContext,
		}, nil
	}

	if fit := budget.FitChunks(texts, a.maxTokens); len(fit) < len(texts) {
		log.Warn("budget: dropped context chunks to fit token budget",
			slog.Int("dropped", len(texts)-len(fit)),
			slog.Int("retained", len(fit)),
			slog.Int("max_tokens", a.maxTokens),
		)
		selected, scores, texts = selected[:len(fit)], scores[:len(fit)], fit
	}

	text, err := prompt.Compose(ctx, prompt.Documents, map[string]string{
		"context":  strings.Join(texts, "\n\n"),
		"question": req.Question,
	})
	if err != nil {
		return nil, wrap(ctx, "documents.compose", err)
	}

	answer, err := a.completer.Complete(ctx, provider.Request{
		Provider:    cfg,
		Prompt:      text,
		Temperature: factualTemperature,
		Name:        "documents",
	})
	if err != nil {
		return nil, wrap(ctx, "documents.complete", err)
	}

	citations := make([]Citation, len(selected))
	for i, c := range selected {
		citations[i] = Citation{
			Rank:           i + 1,
			Source:         c.SourceID,
			ContentPreview: preview(c.Text, previewLength),
			Score:          scores[i],
		}
	}
	return &DocumentResponse{Answer: answer, Citations: citations, Outcome: OutcomeOK}, nil
}

// preview returns the first n characters of s, marked with "..." when cut.
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
