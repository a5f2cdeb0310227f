// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     session
// Description: Error taxonomy for the session engine
// License:     MIT
// ============================================================================

package session

import (
	"errors"
	"fmt"
)

// ErrValidationRejected marks a transcript the validator refused. It is a
// diagnostic, never surfaced as a user-facing failure.
var ErrValidationRejected = errors.New("transcript rejected by validator")

// ErrCaptureAccessDenied means the system audio capture permission is missing.
// Session-level: new turns stop until resolved, existing data is kept.
var ErrCaptureAccessDenied = errors.New("system audio capture access denied")

// ConfigurationError means no AI provider could be resolved for a completion.
// Surfaced to the user as a blocking message; no supervisor turn is attempted.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// TranscriptionError wraps a failure of the external transcription call.
// Transient: the session and conversation survive it.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed: %v", e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// StreamError wraps a completion stream that failed mid-flight. Whatever was
// accumulated before the failure is discarded.
type StreamError struct {
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("completion stream failed: %v", e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }
