// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     session
// Description: Turn router (speaker channel assignment)
// License:     MIT
// ============================================================================

package session

import (
	"github.com/supervisia/supervisia/pkg/logging"
)

// Router stamps incoming transcripts with a speaker role and appends them to
// the conversation log. Rejected transcripts are dropped silently; the caller
// only sees a diagnostic.
type Router struct {
	log    *ConversationLog
	logger *logging.Logger
}

// NewRouter creates a router writing to the given log.
func NewRouter(log *ConversationLog) *Router {
	return &Router{
		log:    log,
		logger: logging.New("turn-router"),
	}
}

// Route validates a transcript and, if accepted, appends a role-stamped turn.
// The returned bool reports whether a turn was appended.
func (r *Router) Route(t Transcript) (Turn, bool) {
	if !ValidateTranscript(t.Text) {
		r.logger.Debug("Transcript dropped", "source", t.Source.String(), "reason", ErrValidationRejected, "text", t.Text)
		return Turn{}, false
	}

	r.log.EnsureConversation()

	turn := NewTurn(RoleForSource(t.Source), t.Text)
	r.log.Append(turn)

	r.logger.Debug("Turn appended", "role", string(turn.Role), "id", turn.ID)
	return turn, true
}
