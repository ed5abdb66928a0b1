package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/54b3r/microagents-go/internal/agent"
	"github.com/54b3r/microagents-go/internal/logging"
)

// apiKeyHeader is accepted in place of a Bearer token for clients that
// cannot set Authorization.
const apiKeyHeader = "X-API-Key"

// kindUnauthorized is the error_kind of a 401 body.
const kindUnauthorized agent.Kind = "unauthorized"

// authMiddleware guards next with the server API key. An empty apiKey
// disables auth. The key is read from "Authorization: Bearer <key>" or, when
// that header is absent, from X-API-Key. Key values are never logged.
//
// The key is unrelated to the per-request api_key field, which is the LLM
// provider credential and travels in the JSON body.
func authMiddleware(apiKey string, next http.Handler) http.Handler {
	if apiKey == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, via := presentedKey(r)
		if key == "" {
			unauthorized(w, r, "authorization required", `Bearer realm="microagents"`, via)
			return
		}
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			unauthorized(w, r, "invalid token", `Bearer realm="microagents" error="invalid_token"`, via)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, r *http.Request, msg, challenge, via string) {
	logging.FromContext(r.Context()).Warn("auth: rejected",
		slog.String("path", r.URL.Path),
		slog.String("reason", msg),
		slog.String("via", via),
	)
	w.Header().Set("WWW-Authenticate", challenge)
	writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{Error: msg, ErrorKind: kindUnauthorized})
}

// presentedKey returns the key the client sent and the header it came in.
func presentedKey(r *http.Request) (key, via string) {
	if r.Header.Get("Authorization") != "" {
		return bearerToken(r), "authorization"
	}
	if k := strings.TrimSpace(r.Header.Get(apiKeyHeader)); k != "" {
		return k, "x-api-key"
	}
	return "", "none"
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header, or "" when absent or malformed.
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
