// Package rank implements the relevance ranker shared by the agents: a
// TF-IDF vector space built over a small corpus plus the query, cosine
// similarity, top-K selection, and the engagement blend used for video
// recommendations.
//
// The vector space is rebuilt on every call. Corpora are a handful of local
// files, so nothing is cached between requests.
package rank

import (
	"math"
	"regexp"
	"strings"
)

// tokenPattern matches runs of two or more word characters, the same token
// definition the usual bag-of-words vectorisers default to.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Vector is a sparse, L2-normalised term-weight vector keyed by term.
type Vector map[string]float64

// Tokenize lowercases text, extracts tokens and drops English stop words.
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if _, stop := englishStopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Vectorize builds one TF-IDF vector per document. Weights are raw term
// counts times the smoothed inverse document frequency
// ln((1+n)/(1+df)) + 1, and each vector is L2-normalised. A document with no
// surviving tokens yields an empty vector.
func Vectorize(docs []string) []Vector {
	n := len(docs)
	counts := make([]map[string]int, n)
	df := make(map[string]int)

	for i, doc := range docs {
		tf := make(map[string]int)
		for _, tok := range Tokenize(doc) {
			tf[tok]++
		}
		for term := range tf {
			df[term]++
		}
		counts[i] = tf
	}

	idf := make(map[string]float64, len(df))
	for term, d := range df {
		idf[term] = math.Log(float64(1+n)/float64(1+d)) + 1
	}

	vectors := make([]Vector, n)
	for i, tf := range counts {
		v := make(Vector, len(tf))
		var norm float64
		for term, c := range tf {
			w := float64(c) * idf[term]
			v[term] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for term := range v {
				v[term] /= norm
			}
		}
		vectors[i] = v
	}
	return vectors
}

// Cosine returns the cosine similarity of two normalised vectors, clamped to
// [0, 1]. Empty vectors score 0.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for term, w := range a {
		dot += w * b[term]
	}
	switch {
	case dot < 0:
		return 0
	case dot > 1:
		return 1
	}
	return dot
}

// Similarities vectorises corpus ∪ {query} and returns the cosine similarity
// of the query against each corpus entry, parallel to corpus.
func Similarities(query string, corpus []string) []float64 {
	if len(corpus) == 0 {
		return nil
	}
	docs := make([]string, 0, len(corpus)+1)
	docs = append(docs, corpus...)
	docs = append(docs, query)

	vectors := Vectorize(docs)
	q := vectors[len(corpus)]

	sims := make([]float64, len(corpus))
	for i := range corpus {
		sims[i] = Cosine(q, vectors[i])
	}
	return sims
}
