// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     store
// Description: SQLite persistence for supervision sessions
// License:     MIT
// ============================================================================

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/supervisia/supervisia/internal/session"
)

// SessionStore implements session.Persister on SQLite
type SessionStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// Config holds configuration for the SQLite store
type Config struct {
	Path string
}

// DefaultConfig returns default store configuration
func DefaultConfig() Config {
	return Config{
		Path: "./data/sessions.db",
	}
}

// New creates a new SQLite-based session store
func New(cfg Config) (*SessionStore, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SessionStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the necessary tables
func (s *SessionStore) initSchema() error {
	schema := `
	-- Sessions table
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	-- Turns table. Turn ids are scoped to their session: snapshots are
	-- replaced wholesale, and distinct sessions may carry the same turn ids.
	CREATE TABLE IF NOT EXISTS turns (
		id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		PRIMARY KEY (session_id, id),
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	-- Indices (the composite PK already covers lookups by session)
	CREATE INDEX IF NOT EXISTS idx_turns_timestamp ON turns(timestamp);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveConversation upserts a session snapshot with all of its turns. Turns are
// replaced wholesale; the log is the source of truth and snapshots are small.
func (s *SessionStore) SaveConversation(ctx context.Context, conv session.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conv.ID == "" {
		return fmt.Errorf("session ID is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at
	`, conv.ID, conv.Title, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM turns WHERE session_id = ?`, conv.ID); err != nil {
		return fmt.Errorf("failed to clear turns: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO turns (id, session_id, role, content, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range conv.Turns {
		if _, err := stmt.ExecContext(ctx, t.ID, conv.ID, string(t.Role), t.Content, t.Timestamp); err != nil {
			return fmt.Errorf("failed to save turn: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// LoadLatest returns the most recently updated session, or nil when the
// database is empty or the latest row is unreadable.
func (s *SessionStore) LoadLatest(ctx context.Context) (*session.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conv session.Conversation
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC LIMIT 1
	`).Scan(&conv.ID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, timestamp
		FROM turns WHERE session_id = ? ORDER BY timestamp ASC
	`, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load turns: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t    session.Turn
			role string
		)
		if err := rows.Scan(&t.ID, &role, &t.Content, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.Role = session.Role(role)
		conv.Turns = append(conv.Turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate turns: %w", err)
	}

	return &conv, nil
}

// ListSessions returns session headers, newest first
func (s *SessionStore) ListSessions(ctx context.Context, limit int) ([]session.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []session.Conversation
	for rows.Next() {
		var conv session.Conversation
		if err := rows.Scan(&conv.ID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, conv)
	}
	return out, rows.Err()
}

// DeleteAll removes every session and turn
func (s *SessionStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM turns`); err != nil {
		return fmt.Errorf("failed to delete turns: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}

	return tx.Commit()
}

// Statistics returns store counters
func (s *SessionStore) Statistics(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]interface{})

	var sessions, turns int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&sessions); err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM turns`).Scan(&turns); err != nil {
		return nil, fmt.Errorf("failed to count turns: %w", err)
	}

	stats["sessions"] = sessions
	stats["turns"] = turns
	return stats, nil
}

// Close closes the database
func (s *SessionStore) Close() error {
	return s.db.Close()
}
