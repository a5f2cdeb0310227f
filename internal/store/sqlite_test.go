// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     store
// Description: Tests for the SQLite session store
// License:     MIT
// ============================================================================

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/supervisia/supervisia/internal/session"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	st, err := New(Config{Path: filepath.Join(t.TempDir(), "sessions.db")})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleConversation() session.Conversation {
	now := time.Now()
	return session.Conversation{
		ID:        "supervision_test",
		Title:     "Sessão 15/08/2026",
		CreatedAt: now.UnixMilli(),
		UpdatedAt: now.UnixMilli(),
		Turns: []session.Turn{
			{ID: "msg_1", Role: session.RoleTherapist, Content: "como foi a semana?", Timestamp: now.UnixMilli()},
			{ID: "msg_2", Role: session.RolePatient, Content: "foi difícil", Timestamp: now.UnixMilli() + 1},
			{ID: "msg_3", Role: session.RoleSupervisor, Content: "boa abertura", Timestamp: now.UnixMilli() + 2},
		},
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	conv := sampleConversation()
	if err := st.SaveConversation(ctx, conv); err != nil {
		t.Fatalf("SaveConversation failed: %v", err)
	}

	loaded, err := st.LoadLatest(ctx)
	if err != nil {
		t.Fatalf("LoadLatest failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a conversation")
	}

	if loaded.ID != conv.ID || loaded.Title != conv.Title {
		t.Errorf("header = %s/%s", loaded.ID, loaded.Title)
	}
	if len(loaded.Turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(loaded.Turns))
	}
	for i, turn := range loaded.Turns {
		if turn.ID != conv.Turns[i].ID || turn.Role != conv.Turns[i].Role || turn.Content != conv.Turns[i].Content {
			t.Errorf("turn %d = %+v, want %+v", i, turn, conv.Turns[i])
		}
	}
}

func TestSaveIsIdempotentUpsert(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	conv := sampleConversation()
	if err := st.SaveConversation(ctx, conv); err != nil {
		t.Fatal(err)
	}

	// Append a turn and save the grown snapshot under the same id.
	conv.Turns = append(conv.Turns, session.Turn{
		ID: "msg_4", Role: session.RoleTherapist, Content: "entendo", Timestamp: time.Now().UnixMilli(),
	})
	conv.UpdatedAt = time.Now().UnixMilli()
	if err := st.SaveConversation(ctx, conv); err != nil {
		t.Fatal(err)
	}

	loaded, err := st.LoadLatest(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Turns) != 4 {
		t.Errorf("expected 4 turns after second save, got %d", len(loaded.Turns))
	}

	stats, err := st.Statistics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats["sessions"] != 1 {
		t.Errorf("sessions = %v, upsert created duplicates", stats["sessions"])
	}
}

func TestLoadLatestEmpty(t *testing.T) {
	st := newTestStore(t)

	loaded, err := st.LoadLatest(context.Background())
	if err != nil {
		t.Fatalf("empty store should not error: %v", err)
	}
	if loaded != nil {
		t.Errorf("expected nil, got %+v", loaded)
	}
}

func TestDeleteAll(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if err := st.SaveConversation(ctx, sampleConversation()); err != nil {
		t.Fatal(err)
	}
	if err := st.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}

	stats, err := st.Statistics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats["sessions"] != 0 || stats["turns"] != 0 {
		t.Errorf("stats after delete = %v", stats)
	}
}

func TestTurnIDsAreScopedPerSession(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first := sampleConversation()
	if err := st.SaveConversation(ctx, first); err != nil {
		t.Fatal(err)
	}

	// Same turn ids under a different session must not collide.
	second := sampleConversation()
	second.ID = "supervision_other"
	if err := st.SaveConversation(ctx, second); err != nil {
		t.Fatalf("second session with reused turn ids failed: %v", err)
	}

	stats, err := st.Statistics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats["sessions"] != 2 || stats["turns"] != 6 {
		t.Errorf("stats = %v, want 2 sessions and 6 turns", stats)
	}
}

func TestListSessionsNewestFirst(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	old := sampleConversation()
	old.ID = "supervision_old"
	old.UpdatedAt = time.Now().Add(-time.Hour).UnixMilli()
	if err := st.SaveConversation(ctx, old); err != nil {
		t.Fatal(err)
	}

	recent := sampleConversation()
	recent.ID = "supervision_new"
	if err := st.SaveConversation(ctx, recent); err != nil {
		t.Fatal(err)
	}

	sessions, err := st.ListSessions(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != "supervision_new" {
		t.Errorf("first listed = %s, want the most recent", sessions[0].ID)
	}
}
