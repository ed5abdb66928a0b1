package agent

import (
	"strings"

	"github.com/54b3r/microagents-go/internal/records"
)

// DefaultTopK is used when a request does not set top_k.
const DefaultTopK = 3

// LLMSelection is the per-request provider override shared by every agent
// request. Empty fields fall back to the server defaults.
type LLMSelection struct {
	// LLMProvider names the backend, matched case-insensitively.
	LLMProvider string `json:"llm_provider"`
	// ModelName is the model or deployment name.
	ModelName string `json:"model_name"`
	// APIKey is the caller's credential for the backend.
	APIKey string `json:"api_key"`
}

// AQIRequest asks a question about air quality in a city on a date.
type AQIRequest struct {
	City     string `json:"city"`
	Date     string `json:"date"`
	Question string `json:"question"`
	// AQIFile is an inline AQI record as a JSON string. When set, the data
	// directory is not consulted.
	AQIFile string `json:"aqi_file,omitempty"`
	LLMSelection
}

// Validate reports missing required fields.
func (r *AQIRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.City) == "":
		return invalidInput("aqi.validate", "city is required")
	case strings.TrimSpace(r.Date) == "":
		return invalidInput("aqi.validate", "date is required")
	case strings.TrimSpace(r.Question) == "":
		return invalidInput("aqi.validate", "question is required")
	}
	return nil
}

// AQIResponse is the AQI agent answer. Record is set when a reading was
// found; Available is set instead when none matched.
type AQIResponse struct {
	Answer    string             `json:"answer"`
	Record    *records.AQIRecord `json:"record,omitzero"`
	Available []string           `json:"available,omitzero"`
	// Fallback is true when the canned answer replaced a failed completion.
	Fallback  bool   `json:"fallback,omitempty"`
	ErrorKind Kind   `json:"error_kind,omitempty"`
	Outcome   string `json:"-"`
}

// DocumentRequest asks a question answered from the document corpus.
type DocumentRequest struct {
	Question string `json:"question"`
	// TopK is the number of chunks used as context. Nil means DefaultTopK.
	TopK *int `json:"top_k,omitempty"`
	LLMSelection
}

// Validate reports missing or out-of-range fields.
func (r *DocumentRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return invalidInput("documents.validate", "question is required")
	}
	if r.TopK != nil && *r.TopK < 1 {
		return invalidInput("documents.validate", "top_k must be at least 1")
	}
	return nil
}

// Citation identifies a chunk used as context.
type Citation struct {
	Rank           int     `json:"rank"`
	Source         string  `json:"source"`
	ContentPreview string  `json:"content_preview"`
	Score          float64 `json:"score"`
}

// DocumentResponse is the document agent answer.
type DocumentResponse struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	ErrorKind Kind       `json:"error_kind,omitempty"`
	Outcome   string     `json:"-"`
}

// VideoRequest asks for follow-up video ideas.
type VideoRequest struct {
	// Prompt describes the video the creator wants to make next.
	Prompt string `json:"prompt"`
	// TopK is the number of recommendations. Nil means DefaultTopK.
	TopK *int `json:"top_k,omitempty"`
	// YouTubeFile is an inline CSV dataset. When set, the data directory is
	// not consulted.
	YouTubeFile string `json:"youtube_file,omitempty"`
	LLMSelection
}

// Validate reports missing or out-of-range fields.
func (r *VideoRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return invalidInput("video.validate", "prompt is required")
	}
	if r.TopK != nil && *r.TopK < 1 {
		return invalidInput("video.validate", "top_k must be at least 1")
	}
	return nil
}

// Recommendation is one suggested follow-up video.
type Recommendation struct {
	SuggestedTitle   string           `json:"suggested_title"`
	Hook             string           `json:"hook"`
	InspiredBy       string           `json:"inspired_by"`
	PerformanceScore string           `json:"performance_score"`
	WhyThisAngle     string           `json:"why_this_angle"`
	Outline          []string         `json:"outline"`
	SuggestionSource SuggestionSource `json:"suggestion_source"`
	Similarity       float64          `json:"similarity"`
	RankScore        float64          `json:"rank_score"`
}

// VideoResponse is the video agent answer.
type VideoResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
	Error           string           `json:"error,omitempty"`
	ErrorKind       Kind             `json:"error_kind,omitempty"`
	Outcome         string           `json:"-"`
}

// Outcome labels used for metrics and the interaction log, alongside the
// failure kinds.
const (
	OutcomeOK                  = "ok"
	OutcomeFallback            = "fallback"
	OutcomeNotFound            = "not_found"
	OutcomeInsufficientContext = "insufficient_context"
)

func topK(p *int) int {
	if p == nil {
		return DefaultTopK
	}
	return *p
}
