package agent

import (
	"context"
	"sync"

	"github.com/54b3r/microagents-go/internal/ingestion"
	"github.com/54b3r/microagents-go/internal/provider"
	"github.com/54b3r/microagents-go/internal/records"
)

// fakeCompleter returns canned answers in order, or err, and records every
// request it receives.
type fakeCompleter struct {
	mu      sync.Mutex
	answers []string
	err     error
	calls   []provider.Request
}

func (f *fakeCompleter) Complete(ctx context.Context, req provider.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if err := ctx.Err(); err != nil {
		return "", &provider.CompletionError{Backend: req.Provider.Backend, Model: req.Provider.Model, Err: err}
	}
	if f.err != nil {
		return "", f.err
	}
	if len(f.answers) == 0 {
		return "answer", nil
	}
	a := f.answers[0]
	if len(f.answers) > 1 {
		f.answers = f.answers[1:]
	}
	return a, nil
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeSource is an in-memory data set that counts accesses.
type fakeSource struct {
	aqi       []records.AQIRecord
	available []string
	docs      []ingestion.Document
	videos    []records.Video
	err       error

	mu       sync.Mutex
	accesses int
}

func (f *fakeSource) touch() {
	f.mu.Lock()
	f.accesses++
	f.mu.Unlock()
}

func (f *fakeSource) LookupAQI(_ context.Context, city, date string) (records.AQIRecord, error) {
	f.touch()
	if f.err != nil {
		return records.AQIRecord{}, f.err
	}
	for _, r := range f.aqi {
		if r.Matches(city, date) {
			return r, nil
		}
	}
	return records.AQIRecord{}, records.ErrNotFound
}

func (f *fakeSource) AvailableAQI(context.Context) ([]string, error) {
	f.touch()
	return f.available, nil
}

func (f *fakeSource) LoadDocuments(context.Context) ([]ingestion.Document, error) {
	f.touch()
	return f.docs, f.err
}

func (f *fakeSource) LoadVideos(context.Context) ([]records.Video, error) {
	f.touch()
	return f.videos, f.err
}

func testConfig(c Completer) Config {
	return Config{
		Completer: c,
		Provider:  provider.Config{Backend: provider.BackendOpenRouter, Model: provider.DefaultModel, APIKey: "server-key"},
	}
}

var delhi = records.AQIRecord{
	City: "Delhi", Date: "2025-10-23", AQI: "182",
	PM25: "92.4", PM10: "160", O3: "31", NO2: "44",
}

var sampleDocs = []ingestion.Document{
	{SourceID: "guide_ai.txt", Text: "This PDF is a mini guide about AI agents.\nAgents use tools to answer questions grounded in data.\nRAG means retrieve relevant context and generate an answer.\nEvaluation should include citation checking for reliability."},
	{SourceID: "travel_notes.txt", Text: "Travel notes: Srinagar, Sonamarg, Gulmarg, Pahalgam.\nDal Lake, Shalimar Bagh, Nishat Bagh are popular attractions.\nWear layers in the valley; weather changes quickly."},
}

var sampleVideos = []records.Video{
	{Title: "Agents in 10 minutes", Script: "We wire an LLM to tools so the agent answers questions from data.", Views: 1000, Likes: 10},
	{Title: "Dal Lake sunrise", Script: "Rowing a shikara across Dal Lake before breakfast.", Views: 100, Likes: 1},
	{Title: "RAG explained", Script: "Retrieval augmented generation fetches context for the agent.", Views: 500, Likes: 5},
}

func intPtr(n int) *int { return &n }
