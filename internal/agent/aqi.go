package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/54b3r/microagents-go/internal/logging"
	"github.com/54b3r/microagents-go/internal/prompt"
	"github.com/54b3r/microagents-go/internal/provider"
	"github.com/54b3r/microagents-go/internal/records"
)

// AQIAgent answers air-quality questions for a city on a date.
type AQIAgent struct {
	base
	source AQISource
}

// NewAQIAgent returns an AQI agent reading from src.
func NewAQIAgent(cfg Config, src AQISource) *AQIAgent {
	return &AQIAgent{base: newBase(cfg), source: src}
}

// Answer resolves the reading, asks the model and returns its answer. A
// missing reading is a normal response listing the available files. A
// failed completion is replaced by the canned FallbackAnswer unless the
// caller went away.
func (a *AQIAgent) Answer(ctx context.Context, req AQIRequest) (*AQIResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	cfg, err := a.resolveProvider(ctx, "aqi.provider", req.LLMSelection)
	if err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx).With(slog.String("agent", "aqi"))

	var rec records.AQIRecord
	if req.AQIFile != "" {
		rec, err = records.ParseAQIRecord([]byte(req.AQIFile))
		if err != nil {
			return nil, &Error{Kind: KindInvalidInput, Op: "aqi.inline", Err: err}
		}
	} else {
		rec, err = a.source.LookupAQI(ctx, req.City, req.Date)
		if errors.Is(err, records.ErrNotFound) {
			return a.notFound(ctx, req)
		}
		if err != nil {
			return nil, wrap(ctx, "aqi.lookup", err)
		}
	}

	text, err := prompt.Compose(ctx, prompt.AQI, map[string]string{
		"city":     rec.City,
		"date":     rec.Date,
		"aqi":      records.Value(rec.AQI),
		"pm25":     records.Value(rec.PM25),
		"pm10":     records.Value(rec.PM10),
		"o3":       records.Value(rec.O3),
		"no2":      records.Value(rec.NO2),
		"question": req.Question,
	})
	if err != nil {
		return nil, wrap(ctx, "aqi.compose", err)
	}

	answer, err := a.completer.Complete(ctx, provider.Request{
		Provider:    cfg,
		Prompt:      text,
		Temperature: factualTemperature,
		Name:        "aqi",
	})
	if err != nil {
		if canceled(ctx) {
			return nil, wrap(ctx, "aqi.complete", err)
		}
		log.Warn("aqi: completion failed, using canned answer",
			slog.String("backend", string(cfg.Backend)),
			slog.Any("error", err),
		)
		return &AQIResponse{
			Answer:   FallbackAnswer(rec),
			Record:   &rec,
			Fallback: true,
			Outcome:  OutcomeFallback,
		}, nil
	}

	return &AQIResponse{Answer: answer, Record: &rec, Outcome: OutcomeOK}, nil
}

func (a *AQIAgent) notFound(ctx context.Context, req AQIRequest) (*AQIResponse, error) {
	available, err := a.source.AvailableAQI(ctx)
	if err != nil {
		return nil, wrap(ctx, "aqi.available", err)
	}
	if available == nil {
		available = []string{}
	}
	return &AQIResponse{
		Answer:    fmt.Sprintf("No AQI record found for %s on %s. Try available files.", req.City, req.Date),
		Available: available,
		Outcome:   OutcomeNotFound,
	}, nil
}
