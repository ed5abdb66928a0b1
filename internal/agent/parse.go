package agent

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// SuggestionSource tags where a Suggestion came from.
type SuggestionSource string

const (
	// SourceParsed marks a suggestion decoded from the model answer.
	SourceParsed SuggestionSource = "parsed"
	// SourceDefault marks the deterministic suggestion derived from the
	// creator's prompt.
	SourceDefault SuggestionSource = "default"
)

// Suggestion is a video title, hook and outline.
type Suggestion struct {
	Title   string
	Hook    string
	Outline []string
	Source  SuggestionSource
}

// defaultOutline is the fixed outline used by DefaultSuggestion.
var defaultOutline = []string{
	"Hook: Start with a surprising statistic or question",
	"Show the problem: Demonstrate why this matters",
	"Present the solution: Step-by-step breakdown",
	"Real-world example: Show it in action",
	"Call to action: What viewers should do next",
}

// suggestionPayload is the JSON shape the video prompt asks for.
type suggestionPayload struct {
	Title   string   `json:"title"`
	Hook    string   `json:"hook"`
	Outline []string `json:"outline"`
}

// ParseSuggestion decodes the model answer strictly. Any failure yields
// DefaultSuggestion(userPrompt).
func ParseSuggestion(answer, userPrompt string) Suggestion {
	s, err := parseSuggestionJSON(answer)
	if err != nil {
		return DefaultSuggestion(userPrompt)
	}
	return s
}

// parseSuggestionJSON accepts a single JSON object, optionally wrapped in one
// markdown code fence, with a non-empty title, hook and outline.
func parseSuggestionJSON(answer string) (Suggestion, error) {
	var p suggestionPayload
	if err := json.Unmarshal([]byte(stripCodeFence(answer)), &p); err != nil {
		return Suggestion{}, fmt.Errorf("agent::parseSuggestionJSON: failed to unmarshal model output: %w", err)
	}

	p.Title = strings.TrimSpace(p.Title)
	p.Hook = strings.TrimSpace(p.Hook)
	switch {
	case p.Title == "":
		return Suggestion{}, fmt.Errorf("agent::parseSuggestionJSON: title is empty")
	case p.Hook == "":
		return Suggestion{}, fmt.Errorf("agent::parseSuggestionJSON: hook is empty")
	case len(p.Outline) == 0:
		return Suggestion{}, fmt.Errorf("agent::parseSuggestionJSON: outline is empty")
	}
	for i, step := range p.Outline {
		if strings.TrimSpace(step) == "" {
			return Suggestion{}, fmt.Errorf("agent::parseSuggestionJSON: outline step %d is empty", i+1)
		}
	}

	return Suggestion{Title: p.Title, Hook: p.Hook, Outline: p.Outline, Source: SourceParsed}, nil
}

// stripCodeFence removes one surrounding ``` or ```json fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	body := strings.TrimSuffix(s[3:], "```")
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "{[") {
		body = body[nl+1:]
	}
	return strings.TrimSpace(body)
}

// DefaultSuggestion derives a suggestion from the first word of the prompt.
func DefaultSuggestion(userPrompt string) Suggestion {
	word := "This"
	if f := strings.Fields(userPrompt); len(f) > 0 {
		word = f[0]
	}
	outline := make([]string, len(defaultOutline))
	copy(outline, defaultOutline)
	return Suggestion{
		Title:   fmt.Sprintf("Next: %s Unlocked - What You Need to Know", titleCase(word)),
		Hook:    fmt.Sprintf("Hook idea: What if %s was easier than you think?", word),
		Outline: outline,
		Source:  SourceDefault,
	}
}

// titleCase upper-cases the first letter of every letter run and lower-cases
// the rest, so "ai-agents" becomes "Ai-Agents".
func titleCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
