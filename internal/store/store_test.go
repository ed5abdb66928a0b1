package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// openTestStore opens an in-memory SQLiteStore for use in tests.
func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func Test_Store_AppendAndRecent(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Unix(1_700_000_000, 0)
	if err := s.Append(ctx, Interaction{Agent: "aqi", Query: "Delhi?", Answer: "Unhealthy", Outcome: "ok", CreatedAt: base}); err != nil {
		t.Fatalf("append aqi: %v", err)
	}
	if err := s.Append(ctx, Interaction{Agent: "video", Query: "agents", Answer: "3 ideas", Outcome: "completion", RequestID: "req-1", CreatedAt: base.Add(time.Second)}); err != nil {
		t.Fatalf("append video: %v", err)
	}

	got, err := s.Recent(ctx, "", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 interactions, got %d", len(got))
	}
	if got[0].Agent != "video" || got[0].Outcome != "completion" || got[0].RequestID != "req-1" {
		t.Errorf("got[0]: want newest video entry, got %+v", got[0])
	}
	if got[1].Agent != "aqi" || got[1].Query != "Delhi?" || !got[1].CreatedAt.Equal(base) {
		t.Errorf("got[1]: want aqi entry at %v, got %+v", base, got[1])
	}
	if got[0].ID == 0 || got[0].ID == got[1].ID {
		t.Errorf("expected distinct row IDs, got %d and %d", got[0].ID, got[1].ID)
	}
}

func Test_Store_RecentLimitRespected(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	for range 6 {
		if err := s.Append(ctx, Interaction{Agent: "documents", Query: "q", Answer: "a", Outcome: "ok"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := s.Recent(ctx, "documents", 4)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("want 4 interactions, got %d", len(got))
	}
}

func Test_Store_AgentFilter(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	for _, agent := range []string{"aqi", "documents", "aqi"} {
		if err := s.Append(ctx, Interaction{Agent: agent, Query: "q", Answer: "a", Outcome: "ok"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := s.Recent(ctx, "aqi", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 aqi interactions, got %d", len(got))
	}
	for _, in := range got {
		if in.Agent != "aqi" {
			t.Errorf("filter leaked %q", in.Agent)
		}
	}

	none, err := s.Recent(ctx, "video", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("want empty non-nil slice, got %#v", none)
	}
}

func Test_Store_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Append(ctx, Interaction{Agent: "aqi", Query: "q", Answer: "a", Outcome: "fallback"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = s2.Close() })
	if err := s2.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	got, err := s2.Recent(ctx, "", 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 || got[0].Outcome != "fallback" {
		t.Errorf("want persisted fallback entry, got %+v", got)
	}
}
