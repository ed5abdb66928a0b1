package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/54b3r/microagents-go/internal/agent"
	"github.com/54b3r/microagents-go/internal/logging"
	"github.com/54b3r/microagents-go/internal/store"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
	// historyWriteTimeout bounds the interaction log append, which runs after
	// the agent finished and must not inherit a cancelled request context.
	historyWriteTimeout = 2 * time.Second
)

// handleRoot handles GET / with the list of available routes.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, rootResponse{OK: true, Routes: routes})
}

// handleAQI handles POST /aqi/query.
func (s *Server) handleAQI(w http.ResponseWriter, r *http.Request) {
	serveAgent(s, w, r, "aqi", s.aqi.Answer, agent.AQIFailure,
		func(req agent.AQIRequest, resp *agent.AQIResponse) store.Interaction {
			return store.Interaction{Query: req.Question, Answer: resp.Answer, Outcome: resp.Outcome}
		})
}

// handleDocuments handles POST /pdfs/query.
func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	serveAgent(s, w, r, "documents", s.docs.Answer, agent.DocumentFailure,
		func(req agent.DocumentRequest, resp *agent.DocumentResponse) store.Interaction {
			return store.Interaction{Query: req.Question, Answer: resp.Answer, Outcome: resp.Outcome}
		})
}

// handleVideo handles POST /youtube/recommend.
func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	serveAgent(s, w, r, "video", s.videos.Recommend, agent.VideoFailure,
		func(req agent.VideoRequest, resp *agent.VideoResponse) store.Interaction {
			answer := resp.Error
			if answer == "" {
				answer = fmt.Sprintf("%d recommendations", len(resp.Recommendations))
			}
			return store.Interaction{Query: req.Prompt, Answer: answer, Outcome: resp.Outcome}
		})
}

// serveAgent runs one agent request end to end: decode, call, shape, record.
// Malformed bodies and invalid_input errors are the only 4xx responses;
// every other agent failure is shaped by fail and returned with 200 so
// clients always receive the agent's own payload.
func serveAgent[Req any, Resp any](
	s *Server,
	w http.ResponseWriter,
	r *http.Request,
	name string,
	call func(context.Context, Req) (Resp, error),
	fail func(error) Resp,
	summarize func(Req, Resp) store.Interaction,
) {
	ctx := r.Context()
	log := logging.FromContext(ctx).With(slog.String("agent", name))
	start := time.Now()

	var req Req
	if err := s.decode(w, r, &req); err != nil {
		s.observe(name, string(agent.KindInvalidInput), start)
		writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: err.Error(), ErrorKind: agent.KindInvalidInput})
		return
	}

	resp, err := call(logging.WithLogger(ctx, log), req)
	if err != nil {
		kind := agent.KindOf(err)
		if kind == agent.KindInvalidInput {
			s.observe(name, string(kind), start)
			writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: err.Error(), ErrorKind: kind})
			return
		}
		log.Error("agent request failed", slog.String("kind", string(kind)), slog.Any("error", err))
		resp = fail(err)
	}

	in := summarize(req, resp)
	s.observe(name, in.Outcome, start)
	in.Agent = name
	in.RequestID = requestIDFromContext(ctx)
	s.record(ctx, in)

	writeJSON(ctx, w, http.StatusOK, resp)
}

// decode reads a JSON request body into v. Unknown fields are ignored.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// record appends in to the interaction log. Failures are logged and never
// affect the response.
func (s *Server) record(ctx context.Context, in store.Interaction) {
	if s.history == nil {
		return
	}
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
	defer cancel()
	if err := s.history.Append(writeCtx, in); err != nil {
		logging.FromContext(ctx).Warn("interaction log append failed", slog.Any("error", err))
	}
}

// handleHistory handles GET /api/history?agent=<name>&limit=<n>.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer", ErrorKind: agent.KindInvalidInput})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	if s.history == nil {
		writeJSON(ctx, w, http.StatusOK, historyResponse{Interactions: []store.Interaction{}})
		return
	}

	items, err := s.history.Recent(ctx, r.URL.Query().Get("agent"), limit)
	if err != nil {
		logging.FromContext(ctx).Error("history query failed", slog.Any("error", err))
		writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "history unavailable", ErrorKind: agent.KindInternal})
		return
	}
	writeJSON(ctx, w, http.StatusOK, historyResponse{Enabled: true, Interactions: items})
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(ctx).Error("response encode error", slog.Any("error", err))
	}
}
