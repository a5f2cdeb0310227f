// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     session
// Description: Append-only conversation log with persistence side channel
// License:     MIT
// ============================================================================

package session

import (
	"context"
	"sync"
	"time"

	"github.com/supervisia/supervisia/pkg/logging"
)

// Persister stores conversation snapshots. Persistence is fire-and-forget: an
// in-memory append is visible to readers before the persist call returns, and
// a failed persist never blocks routing.
type Persister interface {
	SaveConversation(ctx context.Context, conv Conversation) error
}

// ConversationLog owns the single active conversation. Turns are only ever
// appended; no turn is removed or edited through this interface.
type ConversationLog struct {
	mu      sync.RWMutex
	conv    Conversation
	store   Persister
	logger  *logging.Logger
	saveCtx context.Context
}

// NewConversationLog creates an empty log. store may be nil (no persistence).
func NewConversationLog(ctx context.Context, store Persister) *ConversationLog {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ConversationLog{
		store:   store,
		logger:  logging.New("conversation-log"),
		saveCtx: ctx,
	}
}

// Restore replaces the log content with a previously persisted conversation.
// Used at startup only, before any routing happens.
func (l *ConversationLog) Restore(conv Conversation) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.conv = conv
}

// EnsureConversation lazily initializes a conversation if none is active and
// returns the active id.
func (l *ConversationLog) EnsureConversation() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureLocked()
	return l.conv.ID
}

func (l *ConversationLog) ensureLocked() {
	if l.conv.ID != "" {
		return
	}
	now := time.Now()
	l.conv.ID = NewConversationID()
	l.conv.Title = DefaultTitle(now)
	l.conv.CreatedAt = now.UnixMilli()
	l.conv.UpdatedAt = l.conv.CreatedAt
}

// Append adds a turn to the sequence and schedules an asynchronous persist of
// the resulting snapshot.
func (l *ConversationLog) Append(turn Turn) {
	l.mu.Lock()
	l.ensureLocked()
	l.conv.Turns = append(l.conv.Turns, turn)
	l.conv.UpdatedAt = time.Now().UnixMilli()
	snapshot := l.snapshotLocked()
	l.mu.Unlock()

	l.persist(snapshot)
}

func (l *ConversationLog) persist(snapshot Conversation) {
	if l.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(l.saveCtx, 10*time.Second)
		defer cancel()
		if err := l.store.SaveConversation(ctx, snapshot); err != nil {
			l.logger.Warn("Failed to persist conversation", "id", snapshot.ID, "error", err)
		}
	}()
}

// Reset discards all turns and starts a fresh conversation with a new id.
func (l *ConversationLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	l.conv = Conversation{
		ID:        NewConversationID(),
		CreatedAt: now.UnixMilli(),
		UpdatedAt: now.UnixMilli(),
	}
}

// Snapshot returns a copy of the active conversation in causal order.
func (l *ConversationLog) Snapshot() Conversation {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

func (l *ConversationLog) snapshotLocked() Conversation {
	conv := l.conv
	conv.Turns = make([]Turn, len(l.conv.Turns))
	copy(conv.Turns, l.conv.Turns)
	return conv
}

// Turns returns the turn sequence in causal (insertion) order.
func (l *ConversationLog) Turns() []Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	turns := make([]Turn, len(l.conv.Turns))
	copy(turns, l.conv.Turns)
	return turns
}

// TurnsNewestFirst returns the turns in display order (most recent first).
func (l *ConversationLog) TurnsNewestFirst() []Turn {
	turns := l.Turns()
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns
}

// Len returns the number of turns.
func (l *ConversationLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.conv.Turns)
}

// LastTurn returns the most recently appended turn, if any.
func (l *ConversationLog) LastTurn() (Turn, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.conv.Turns) == 0 {
		return Turn{}, false
	}
	return l.conv.Turns[len(l.conv.Turns)-1], true
}

// UpdatedAt returns the conversation's last mutation time in unix ms.
func (l *ConversationLog) UpdatedAt() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.conv.UpdatedAt
}
