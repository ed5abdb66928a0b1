package rank

import (
	"math"
	"sort"
)

const (
	// SimilarityWeight is the share of the blended video score taken by
	// query similarity.
	SimilarityWeight = 0.6
	// EngagementWeight is the share taken by normalised engagement.
	EngagementWeight = 0.4
	// epsilon keeps min-max normalisation finite when every score is equal.
	epsilon = 1e-6
)

// Result is a single ranked corpus entry.
type Result struct {
	// Index is the position of the entry in the input corpus.
	Index int
	// Score is the cosine similarity to the query, in [0, 1].
	Score float64
}

// Rank returns the topK corpus entries most similar to query, ordered by
// descending score. Ties keep corpus order. topK larger than the corpus
// returns every entry; topK <= 0 or an empty corpus returns nothing.
func Rank(query string, corpus []string, topK int) []Result {
	if len(corpus) == 0 || topK <= 0 {
		return []Result{}
	}

	sims := Similarities(query, corpus)
	results := make([]Result, len(sims))
	for i, s := range sims {
		results[i] = Result{Index: i, Score: s}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results[:min(topK, len(results))]
}

// EngagementScore is the historic performance score of a video.
func EngagementScore(views, likes float64) float64 {
	return likes*2 + views/100
}

// Normalize min-max scales scores into [0, 1) over the full set. When every
// score is equal all entries normalise to 0.
func Normalize(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range scores {
		lo = math.Min(lo, s)
		hi = math.Max(hi, s)
	}
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = (s - lo) / (hi - lo + epsilon)
	}
	return out
}

// Blend combines similarity and normalised engagement into the video rank
// score.
func Blend(similarity, normalized float64) float64 {
	return SimilarityWeight*similarity + EngagementWeight*normalized
}

// Blended is a corpus entry ranked by the similarity/engagement blend.
type Blended struct {
	// Index is the position of the entry in the input corpus.
	Index int
	// Similarity is the cosine similarity to the query.
	Similarity float64
	// Engagement is the raw engagement score.
	Engagement float64
	// Normalized is Engagement min-max scaled over the candidate set.
	Normalized float64
	// Score is the blended rank score.
	Score float64
}

// RankBlended ranks corpus entries by Blend(similarity, normalised
// engagement). engagement must be parallel to corpus. Ordering and topK
// semantics match Rank.
func RankBlended(query string, corpus []string, engagement []float64, topK int) []Blended {
	if len(corpus) == 0 || topK <= 0 || len(engagement) != len(corpus) {
		return []Blended{}
	}

	sims := Similarities(query, corpus)
	norm := Normalize(engagement)

	out := make([]Blended, len(corpus))
	for i := range corpus {
		out[i] = Blended{
			Index:      i,
			Similarity: sims[i],
			Engagement: engagement[i],
			Normalized: norm[i],
			Score:      Blend(sims[i], norm[i]),
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	return out[:min(topK, len(out))]
}
