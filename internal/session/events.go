// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     session
// Description: Observer events emitted by the engine
// License:     MIT
// ============================================================================

package session

// EventKind classifies observer events.
type EventKind int

const (
	// EventTurnAppended - a turn was committed to the conversation log.
	EventTurnAppended EventKind = iota

	// EventPartialResponse - the in-flight completion accumulated more text.
	EventPartialResponse

	// EventStateChanged - the dispatcher moved between idle and awaiting.
	EventStateChanged

	// EventTranscription - a transcription (or quick action text) arrived and
	// should be shown as the last heard input.
	EventTranscription

	// EventDiagnostic - a transcript was dropped by the validator.
	EventDiagnostic

	// EventFailure - a recoverable turn-level failure to surface to the user.
	EventFailure

	// EventSessionReset - the conversation was replaced by a fresh one.
	EventSessionReset
)

// Event is a read-only notification for passive observers (TUI, tray). The
// engine never blocks on observers: events are dropped if the channel is full.
type Event struct {
	Kind    EventKind
	Turn    Turn
	Partial string
	State   State
	Text    string
	Err     error
}
