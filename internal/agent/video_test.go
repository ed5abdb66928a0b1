package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/54b3r/microagents-go/internal/provider"
)

const goodSuggestion = `{"title":"Agents That Actually Ship","hook":"Your agent is lying to you.","outline":["a","b","c","d","e"]}`

func TestParseSuggestion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		answer string
		source SuggestionSource
		title  string
	}{
		{"bare json", goodSuggestion, SourceParsed, "Agents That Actually Ship"},
		{"fenced json", "```json\n" + goodSuggestion + "\n```", SourceParsed, "Agents That Actually Ship"},
		{"plain fence", "```\n" + goodSuggestion + "\n```", SourceParsed, "Agents That Actually Ship"},
		{"prose", "Here is a great idea: make a video!", SourceDefault, "Next: Ai Unlocked - What You Need to Know"},
		{"missing hook", `{"title":"t","outline":["a"]}`, SourceDefault, "Next: Ai Unlocked - What You Need to Know"},
		{"empty outline", `{"title":"t","hook":"h","outline":[]}`, SourceDefault, "Next: Ai Unlocked - What You Need to Know"},
		{"outline not array", `{"title":"t","hook":"h","outline":"step"}`, SourceDefault, "Next: Ai Unlocked - What You Need to Know"},
		{"trailing prose", goodSuggestion + " hope this helps", SourceDefault, "Next: Ai Unlocked - What You Need to Know"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ParseSuggestion(tc.answer, "ai agents for beginners")
			assert.Equal(t, tc.source, got.Source)
			assert.Equal(t, tc.title, got.Title)
			assert.NotEmpty(t, got.Outline)
		})
	}
}

func TestDefaultSuggestion(t *testing.T) {
	t.Parallel()

	s := DefaultSuggestion("rag-based search tips")
	assert.Equal(t, "Next: Rag-Based Unlocked - What You Need to Know", s.Title)
	assert.Equal(t, "Hook idea: What if rag-based was easier than you think?", s.Hook)
	assert.Len(t, s.Outline, 5)
	assert.Equal(t, SourceDefault, s.Source)

	s.Outline[0] = "mutated"
	assert.NotEqual(t, "mutated", DefaultSuggestion("x").Outline[0])
}

func TestRecommend_OneCompletionPerResult(t *testing.T) {
	t.Parallel()

	c := &fakeCompleter{answers: []string{goodSuggestion, "not json"}}
	resp, err := NewVideoAgent(testConfig(c), &fakeSource{videos: sampleVideos}).Recommend(context.Background(), VideoRequest{
		Prompt: "agents answering questions from data",
		TopK:   intPtr(2),
	})
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 2)
	assert.Equal(t, 2, c.callCount())

	first := resp.Recommendations[0]
	assert.Equal(t, "Agents in 10 minutes", first.InspiredBy)
	assert.Equal(t, "likes=10, views=1000", first.PerformanceScore)
	assert.Equal(t, "Similar to your prompt 'agents answering questions from data' with proven engagement metrics", first.WhyThisAngle)
	assert.Equal(t, SourceParsed, first.SuggestionSource)
	assert.Equal(t, "Agents That Actually Ship", first.SuggestedTitle)
	assert.GreaterOrEqual(t, first.RankScore, resp.Recommendations[1].RankScore)
	assert.Greater(t, first.Similarity, 0.0)

	second := resp.Recommendations[1]
	assert.Equal(t, SourceDefault, second.SuggestionSource)
	assert.Equal(t, "Next: Agents Unlocked - What You Need to Know", second.SuggestedTitle)

	for _, call := range c.calls {
		assert.Equal(t, float32(0.7), call.Temperature)
		assert.Contains(t, call.Prompt, `A creator wants to make a video about: "agents answering questions from data"`)
	}
}

func TestRecommend_TopKLargerThanDataset(t *testing.T) {
	t.Parallel()

	resp, err := NewVideoAgent(testConfig(&fakeCompleter{}), &fakeSource{videos: sampleVideos}).Recommend(context.Background(), VideoRequest{
		Prompt: "travel", TopK: intPtr(10),
	})
	require.NoError(t, err)
	assert.Len(t, resp.Recommendations, len(sampleVideos))
}

func TestRecommend_InlineCSVSkipsStore(t *testing.T) {
	t.Parallel()

	src := &fakeSource{videos: sampleVideos}
	resp, err := NewVideoAgent(testConfig(&fakeCompleter{}), src).Recommend(context.Background(), VideoRequest{
		Prompt:      "cooking",
		YouTubeFile: "title,script,views,likes\nPasta night,Cooking fresh pasta at home,200,20\n",
	})
	require.NoError(t, err)
	assert.Zero(t, src.accesses)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "Pasta night", resp.Recommendations[0].InspiredBy)
}

func TestRecommend_InlineCSVInvalid(t *testing.T) {
	t.Parallel()

	_, err := NewVideoAgent(testConfig(&fakeCompleter{}), &fakeSource{}).Recommend(context.Background(), VideoRequest{
		Prompt: "x", YouTubeFile: "name,views\n",
	})
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestRecommend_EmptyDatasetSkipsCompletion(t *testing.T) {
	t.Parallel()

	for name, req := range map[string]VideoRequest{
		"header-only inline CSV": {Prompt: "agents", YouTubeFile: "title,script,views,likes\n"},
		"empty store":            {Prompt: "agents"},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			c := &fakeCompleter{}
			resp, err := NewVideoAgent(testConfig(c), &fakeSource{}).Recommend(context.Background(), req)
			require.NoError(t, err)
			require.NotNil(t, resp.Recommendations)
			assert.Empty(t, resp.Recommendations)
			assert.Equal(t, 0, c.callCount())
		})
	}
}

func TestRecommend_CompletionFailureFailsWholeResponse(t *testing.T) {
	t.Parallel()

	c := &fakeCompleter{err: &provider.CompletionError{Backend: "openrouter", Model: "m", Err: errors.New("rate limited")}}
	resp, err := NewVideoAgent(testConfig(c), &fakeSource{videos: sampleVideos}).Recommend(context.Background(), VideoRequest{
		Prompt: "agents",
	})
	assert.Nil(t, resp)
	assert.Equal(t, KindCompletion, KindOf(err))

	shaped := VideoFailure(err)
	assert.NotNil(t, shaped.Recommendations)
	assert.Empty(t, shaped.Recommendations)
	assert.Contains(t, shaped.Error, "YouTube recommendation failed")
	assert.Equal(t, KindCompletion, shaped.ErrorKind)
}

func TestRecommend_Validation(t *testing.T) {
	t.Parallel()

	a := NewVideoAgent(testConfig(&fakeCompleter{}), &fakeSource{})
	_, err := a.Recommend(context.Background(), VideoRequest{Prompt: " "})
	assert.Equal(t, KindInvalidInput, KindOf(err))

	_, err = a.Recommend(context.Background(), VideoRequest{Prompt: "x", TopK: intPtr(-2)})
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Kind(""), KindOf(nil))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindParse, KindOf(&Error{Kind: KindParse, Op: "x", Err: errors.New("y")}))
}
