// Package agent implements the three request/response agents: air-quality
// Q&A, document Q&A over a local corpus, and video recommendations. Each
// request runs the same pipeline: resolve input, retrieve records, rank,
// compose a prompt, complete, and shape the output, with a deterministic
// fallback where one exists.
//
// Agents hold no per-request state and are safe for concurrent use.
package agent

import (
	"context"

	"github.com/54b3r/microagents-go/internal/audit"
	"github.com/54b3r/microagents-go/internal/budget"
	"github.com/54b3r/microagents-go/internal/ingestion"
	"github.com/54b3r/microagents-go/internal/logging"
	"github.com/54b3r/microagents-go/internal/provider"
	"github.com/54b3r/microagents-go/internal/records"
)

// Temperatures used per agent.
const (
	factualTemperature  float32 = 0.1
	creativeTemperature float32 = 0.7
)

// Completer sends one prompt to an LLM. *provider.ChatCompleter satisfies it.
type Completer interface {
	Complete(ctx context.Context, req provider.Request) (string, error)
}

// AQISource looks up air-quality readings.
type AQISource interface {
	LookupAQI(ctx context.Context, city, date string) (records.AQIRecord, error)
	AvailableAQI(ctx context.Context) ([]string, error)
}

// DocumentSource loads the document corpus.
type DocumentSource interface {
	LoadDocuments(ctx context.Context) ([]ingestion.Document, error)
}

// VideoSource loads the video performance dataset.
type VideoSource interface {
	LoadVideos(ctx context.Context) ([]records.Video, error)
}

// Config holds the dependencies shared by all agents.
type Config struct {
	// Completer sends prompts. Required.
	Completer Completer

	// Provider is the default backend selection; request fields override it.
	Provider provider.Config

	// MaxContextTokens caps the estimated size of document context.
	// Defaults to budget.DefaultMaxContextTokens if zero.
	MaxContextTokens int

	// Splitter cuts documents into chunks. Defaults to the standard
	// 1000/200 splitter if nil.
	Splitter *ingestion.Splitter
}

type base struct {
	completer Completer
	provider  provider.Config
}

// resolveProvider applies the request's provider override and audits it.
func (b base) resolveProvider(ctx context.Context, op string, sel LLMSelection) (provider.Config, error) {
	cfg, err := b.provider.WithOverrides(sel.LLMProvider, sel.ModelName, sel.APIKey)
	if err != nil {
		return provider.Config{}, &Error{Kind: KindInvalidInput, Op: op, Err: err}
	}
	audit.LogOverride(ctx, logging.FromContext(ctx), op, audit.Override{
		Provider: sel.LLMProvider,
		Model:    sel.ModelName,
		APIKey:   sel.APIKey,
	}, string(cfg.Backend), cfg.Model)
	return cfg, nil
}

// Agents bundles the three agents over one data source.
type Agents struct {
	AQI       *AQIAgent
	Documents *DocumentAgent
	Video     *VideoAgent
}

// Source is satisfied by *records.Store.
type Source interface {
	AQISource
	DocumentSource
	VideoSource
}

// New constructs all agents over src.
func New(cfg Config, src Source) *Agents {
	return &Agents{
		AQI:       NewAQIAgent(cfg, src),
		Documents: NewDocumentAgent(cfg, src),
		Video:     NewVideoAgent(cfg, src),
	}
}

func newBase(cfg Config) base {
	return base{completer: cfg.Completer, provider: cfg.Provider}
}

func maxContextTokens(cfg Config) int {
	if cfg.MaxContextTokens <= 0 {
		return budget.DefaultMaxContextTokens
	}
	return cfg.MaxContextTokens
}
