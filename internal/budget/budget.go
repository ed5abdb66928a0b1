// Package budget provides token budget estimation for prompts sent to the
// completion client. Because the agents support multiple LLM backends with
// different tokenizers, this package uses a conservative character-based
// heuristic: 1 token ≈ 4 characters of English prose.
package budget

import (
	"github.com/cloudwego/eino/schema"
)

const (
	// charsPerToken is the character-to-token ratio used for estimation.
	charsPerToken = 4

	// DefaultMaxContextTokens is the default token budget for retrieved
	// document context. Three 1000-character chunks fit comfortably.
	// Override via AGENT_MAX_CONTEXT_TOKENS.
	DefaultMaxContextTokens = 3000
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// EstimateMessages returns the estimated total token count for a slice of
// schema.Message values, summing role + content for each message.
func EstimateMessages(msgs []*schema.Message) int {
	total := 0
	for _, m := range msgs {
		// Each message has a small per-message overhead (~4 tokens in most APIs).
		total += 4
		total += Estimate(string(m.Role))
		total += Estimate(m.Content)
	}
	return total
}

// FitChunks returns the longest prefix of chunks whose estimated total fits
// within maxTokens. chunks must be ordered best-first, so the lowest-ranked
// entries are the ones dropped. The first chunk is always kept even when it
// alone exceeds the budget; maxTokens <= 0 disables trimming.
func FitChunks(chunks []string, maxTokens int) []string {
	if maxTokens <= 0 || len(chunks) <= 1 {
		return chunks
	}

	total := Estimate(chunks[0])
	for i := 1; i < len(chunks); i++ {
		total += Estimate(chunks[i])
		if total > maxTokens {
			return chunks[:i]
		}
	}
	return chunks
}
