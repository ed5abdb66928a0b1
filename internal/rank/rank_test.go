package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"Agents use tools to answer questions grounded in data.",
	"Dal Lake, Shalimar Bagh and Nishat Bagh are popular attractions.",
	"Evaluation should include citation checking for reliability.",
	"Wear layers in the valley; weather changes quickly.",
}

func TestTokenize_DropsStopWordsAndShortTokens(t *testing.T) {
	t.Parallel()

	got := Tokenize("The agent IS a tool, x y RAG-based!")
	assert.Equal(t, []string{"agent", "tool", "rag", "based"}, got)
}

func TestRank_TopKCoversCorpus(t *testing.T) {
	t.Parallel()

	for _, k := range []int{len(corpus), len(corpus) + 5} {
		got := Rank("agents answer questions", corpus, k)
		require.Len(t, got, len(corpus))

		seen := make(map[int]bool)
		for i, r := range got {
			assert.False(t, seen[r.Index], "index %d returned twice", r.Index)
			seen[r.Index] = true
			if i > 0 {
				assert.GreaterOrEqual(t, got[i-1].Score, r.Score, "results must be descending")
			}
		}
	}
}

func TestRank_EmptyCorpus(t *testing.T) {
	t.Parallel()

	got := Rank("anything", nil, 3)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRank_NonPositiveTopK(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Rank("agents", corpus, 0))
	assert.Empty(t, Rank("agents", corpus, -1))
}

func TestRank_VerbatimQueryScoresHighest(t *testing.T) {
	t.Parallel()

	query := corpus[2]
	got := Rank(query, corpus, len(corpus))
	require.NotEmpty(t, got)

	assert.Equal(t, 2, got[0].Index)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	for _, r := range got[1:] {
		assert.Less(t, r.Score, got[0].Score)
	}
}

func TestRank_TiesKeepCorpusOrder(t *testing.T) {
	t.Parallel()

	docs := []string{"alpha beta", "gamma delta", "epsilon zeta"}
	got := Rank("unrelated words", docs, 3)
	require.Len(t, got, 3)
	for i, r := range got {
		assert.Equal(t, i, r.Index)
		assert.Zero(t, r.Score)
	}
}

func TestRank_StopWordOnlyQuery(t *testing.T) {
	t.Parallel()

	got := Rank("the and of", corpus, 2)
	require.Len(t, got, 2)
	assert.Zero(t, got[0].Score)
}

func TestCosine_Bounds(t *testing.T) {
	t.Parallel()

	vs := Vectorize([]string{"agents tools data", "agents tools data", "valley weather"})
	assert.InDelta(t, 1.0, Cosine(vs[0], vs[1]), 1e-9)
	assert.Zero(t, Cosine(vs[0], vs[2]))
	assert.Zero(t, Cosine(Vector{}, vs[0]))
}

func TestNormalize_MinMax(t *testing.T) {
	t.Parallel()

	likes := []float64{1, 10}
	views := []float64{100, 1000}
	scores := []float64{
		EngagementScore(views[0], likes[0]),
		EngagementScore(views[1], likes[1]),
	}
	assert.Equal(t, []float64{3, 30}, scores)

	norm := Normalize(scores)
	assert.InDelta(t, 0.0, norm[0], 1e-9)
	assert.InDelta(t, 1.0, norm[1], 1e-6)
}

func TestNormalize_AllEqual(t *testing.T) {
	t.Parallel()

	norm := Normalize([]float64{5, 5, 5})
	for _, v := range norm {
		assert.Zero(t, v)
	}
}

func TestRankBlended_EngagementBreaksSimilarityTie(t *testing.T) {
	t.Parallel()

	docs := []string{"building agent workflows", "building agent workflows"}
	got := RankBlended("agent workflows", docs, []float64{3, 30}, 2)
	require.Len(t, got, 2)

	assert.Equal(t, 1, got[0].Index)
	assert.InDelta(t, got[0].Similarity, got[1].Similarity, 1e-12)
	assert.InDelta(t, Blend(got[0].Similarity, got[0].Normalized), got[0].Score, 1e-12)
	for _, b := range got {
		assert.GreaterOrEqual(t, b.Score, 0.0)
		assert.LessOrEqual(t, b.Score, 1.0)
	}
}

func TestRankBlended_Degenerate(t *testing.T) {
	t.Parallel()

	assert.Empty(t, RankBlended("x", nil, nil, 3))
	assert.Empty(t, RankBlended("x", []string{"a b"}, []float64{1, 2}, 3))
}
