package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/54b3r/microagents-go/internal/logging"
	"github.com/54b3r/microagents-go/internal/prompt"
	"github.com/54b3r/microagents-go/internal/provider"
	"github.com/54b3r/microagents-go/internal/rank"
	"github.com/54b3r/microagents-go/internal/records"
)

// scriptSnippetLength is the number of script characters shown to the model.
const scriptSnippetLength = 200

// VideoAgent recommends follow-up videos from historic performance.
type VideoAgent struct {
	base
	source VideoSource
}

// NewVideoAgent returns a video agent reading from src.
func NewVideoAgent(cfg Config, src VideoSource) *VideoAgent {
	return &VideoAgent{base: newBase(cfg), source: src}
}

// Recommend ranks videos by script similarity to the prompt blended with
// normalised engagement, then asks the model for a title, hook and outline
// per top video. Answers that do not parse fall back to DefaultSuggestion.
// Any failure aborts the whole request.
func (a *VideoAgent) Recommend(ctx context.Context, req VideoRequest) (*VideoResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	cfg, err := a.resolveProvider(ctx, "video.provider", req.LLMSelection)
	if err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx).With(slog.String("agent", "video"))

	videos, err := a.loadVideos(ctx, req)
	if err != nil {
		return nil, err
	}

	corpus := make([]string, len(videos))
	engagement := make([]float64, len(videos))
	for i, v := range videos {
		corpus[i] = v.Script
		engagement[i] = rank.EngagementScore(v.Views, v.Likes)
	}

	ranked := rank.RankBlended(req.Prompt, corpus, engagement, topK(req.TopK))
	recs := make([]Recommendation, 0, len(ranked))
	for _, r := range ranked {
		v := videos[r.Index]

		text, err := prompt.Compose(ctx, prompt.Video, map[string]string{
			"user_prompt":     req.Prompt,
			"existing_title":  v.Title,
			"existing_script": preview(v.Script, scriptSnippetLength),
		})
		if err != nil {
			return nil, wrap(ctx, "video.compose", err)
		}

		answer, err := a.completer.Complete(ctx, provider.Request{
			Provider:    cfg,
			Prompt:      text,
			Temperature: creativeTemperature,
			Name:        "video",
		})
		if err != nil {
			return nil, wrap(ctx, "video.complete", err)
		}

		s := ParseSuggestion(answer, req.Prompt)
		if s.Source == SourceDefault {
			log.Warn("video: model answer did not parse, using default suggestion",
				slog.String("kind", string(KindParse)),
				slog.String("inspired_by", v.Title),
				slog.Int("answer_len", len(answer)),
			)
		}

		recs = append(recs, Recommendation{
			SuggestedTitle:   s.Title,
			Hook:             s.Hook,
			InspiredBy:       v.Title,
			PerformanceScore: fmt.Sprintf("likes=%d, views=%d", int64(v.Likes), int64(v.Views)),
			WhyThisAngle:     fmt.Sprintf("Similar to your prompt '%s' with proven engagement metrics", req.Prompt),
			Outline:          s.Outline,
			SuggestionSource: s.Source,
			Similarity:       r.Similarity,
			RankScore:        r.Score,
		})
	}

	return &VideoResponse{Recommendations: recs, Outcome: OutcomeOK}, nil
}

func (a *VideoAgent) loadVideos(ctx context.Context, req VideoRequest) ([]records.Video, error) {
	if req.YouTubeFile != "" {
		videos, err := records.ParseVideosCSV(strings.NewReader(req.YouTubeFile))
		if err != nil {
			return nil, &Error{Kind: KindInvalidInput, Op: "video.inline", Err: err}
		}
		return videos, nil
	}
	videos, err := a.source.LoadVideos(ctx)
	if err != nil {
		return nil, wrap(ctx, "video.load", err)
	}
	return videos, nil
}
