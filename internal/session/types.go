// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     session
// Description: Core data model for supervised conversations
// License:     MIT
// ============================================================================

package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Source identifies which capture channel produced a transcript.
type Source int

const (
	// SourceMicrophone is the local microphone channel (the therapist).
	SourceMicrophone Source = iota

	// SourceSystemAudio is the system loopback channel (the patient).
	SourceSystemAudio
)

// String returns the string representation of the source
func (s Source) String() string {
	switch s {
	case SourceMicrophone:
		return "microphone"
	case SourceSystemAudio:
		return "system-audio"
	default:
		return "unknown"
	}
}

// Role identifies the logical speaker of a turn. The string values match the
// persisted conversation format.
type Role string

const (
	RoleTherapist  Role = "terapeuta"
	RolePatient    Role = "paciente"
	RoleSupervisor Role = "assistant"
)

// Transcript is a raw recognizer result. It is ephemeral: consumed once by the
// turn router and never persisted directly.
type Transcript struct {
	Text       string
	Source     Source
	CapturedAt time.Time
}

// Turn is one utterance in a conversation. Immutable once created.
type Turn struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// Conversation is an ordered sequence of turns. Turns are only ever appended,
// in causal order; display layers may reverse for newest-first rendering.
type Conversation struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Turns     []Turn `json:"turns"`
	CreatedAt int64  `json:"created_at"` // unix milliseconds
	UpdatedAt int64  `json:"updated_at"` // unix milliseconds
}

// NewTurn creates a turn with a fresh id and the current timestamp.
func NewTurn(role Role, content string) Turn {
	return Turn{
		ID:        "msg_" + uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}
}

// NewConversationID generates a conversation id.
func NewConversationID() string {
	return "supervision_" + uuid.NewString()
}

// DefaultTitle derives the default conversation title from a session date.
func DefaultTitle(t time.Time) string {
	return fmt.Sprintf("Sessão %s", t.Format("02/01/2006"))
}

// RoleForSource maps a capture channel to the speaker role.
func RoleForSource(s Source) Role {
	if s == SourceSystemAudio {
		return RolePatient
	}
	return RoleTherapist
}
