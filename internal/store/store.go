// Package store provides the SQLite-backed interaction log. Every agent
// request served over HTTP or the CLI is appended with its outcome so
// operators can review recent traffic via GET /api/history or
// `microagents history`. The log is write-mostly and is never read back into
// an agent pipeline.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Interaction is a single served agent request.
type Interaction struct {
	// ID is the row identifier assigned on insert.
	ID int64 `json:"id"`
	// Agent names the agent that served the request (aqi, documents, video).
	Agent string `json:"agent"`
	// Query is the user's question or prompt.
	Query string `json:"query"`
	// Answer is a text summary of the response.
	Answer string `json:"answer"`
	// Outcome is "ok", a degraded outcome such as "fallback", or an error kind.
	Outcome string `json:"outcome"`
	// RequestID correlates the entry with request logs.
	RequestID string `json:"request_id,omitempty"`
	// CreatedAt is when the entry was persisted.
	CreatedAt time.Time `json:"created_at"`
}

// InteractionLog persists and lists interactions. Implementations must be
// safe for concurrent use.
type InteractionLog interface {
	// Append persists one interaction. CreatedAt is set if zero.
	Append(ctx context.Context, in Interaction) error
	// Recent returns up to n interactions, newest first. An empty agent
	// matches every agent.
	Recent(ctx context.Context, agent string, n int) ([]Interaction, error)
	// Ping reports whether the log is usable.
	Ping(ctx context.Context) error
	// Close releases any resources held by the log.
	Close() error
}

// SQLiteStore is an InteractionLog backed by a local SQLite database.
type SQLiteStore struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the interaction log database.
// It resolves to ~/.microagents/history.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".microagents")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("store: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "history.db"), nil
}

// Open opens (or creates) a SQLiteStore at the given path and runs the schema
// migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteStore, error) {
	// WAL mode keeps the HTTP server's reads from blocking on appends.
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS interactions (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    agent       TEXT    NOT NULL,
    query       TEXT    NOT NULL,
    answer      TEXT    NOT NULL,
    outcome     TEXT    NOT NULL,
    request_id  TEXT    NOT NULL DEFAULT '',
    created_at  INTEGER NOT NULL  -- Unix timestamp (milliseconds)
);
CREATE INDEX IF NOT EXISTS idx_interactions_agent_created
    ON interactions (agent, created_at);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Append persists one interaction.
func (s *SQLiteStore) Append(ctx context.Context, in Interaction) error {
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	const q = `INSERT INTO interactions (agent, query, answer, outcome, request_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, in.Agent, in.Query, in.Answer, in.Outcome, in.RequestID, in.CreatedAt.UnixMilli()); err != nil {
		return fmt.Errorf("store: append: %w", err)
	}
	return nil
}

// Recent returns up to n interactions, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, agent string, n int) ([]Interaction, error) {
	const q = `
SELECT id, agent, query, answer, outcome, request_id, created_at
FROM   interactions
WHERE  (? = '' OR agent = ?)
ORDER  BY created_at DESC, id DESC
LIMIT  ?`

	rows, err := s.db.QueryContext(ctx, q, agent, agent, n)
	if err != nil {
		return nil, fmt.Errorf("store: recent: %w", err)
	}
	defer rows.Close()

	out := []Interaction{}
	for rows.Next() {
		var in Interaction
		var ts int64
		if err := rows.Scan(&in.ID, &in.Agent, &in.Query, &in.Answer, &in.Outcome, &in.RequestID, &ts); err != nil {
			return nil, fmt.Errorf("store: recent scan: %w", err)
		}
		in.CreatedAt = time.UnixMilli(ts)
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: recent rows: %w", err)
	}
	return out, nil
}

// Ping verifies the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("store: ping: %w", err)
	}
	return nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}
