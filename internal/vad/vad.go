// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     vad
// Description: Voice activity detection interface and utterance tracking
// License:     MIT
// ============================================================================

package vad

import (
	"time"
)

// Detector is the interface for voice activity detection
type Detector interface {
	// Process processes audio samples and returns whether speech is detected
	Process(samples []float32) (bool, error)

	// Close releases resources
	Close() error
}

// Config holds VAD configuration
type Config struct {
	// SampleRate is the audio sample rate (8000, 16000, 32000 or 48000)
	SampleRate int

	// Mode is the aggressiveness (0-3, higher filters more)
	Mode int

	// SilenceDuration is how long silence must last to end an utterance
	SilenceDuration time.Duration

	// MinSpeechDuration is the minimum speech duration to count as valid
	MinSpeechDuration time.Duration
}

// DefaultConfig returns default VAD configuration
func DefaultConfig() Config {
	return Config{
		SampleRate:        16000,
		Mode:              2,
		SilenceDuration:   1500 * time.Millisecond,
		MinSpeechDuration: 400 * time.Millisecond,
	}
}

// SpeechState is the current utterance-tracking state.
type SpeechState struct {
	IsSpeaking      bool
	SpeechStart     time.Time
	LastSpeech      time.Time
	SilenceDuration time.Duration
	SpeechDuration  time.Duration
}

// SpeechTracker turns per-frame VAD decisions into utterance boundaries.
// Not safe for concurrent use; each capture channel owns its own tracker.
type SpeechTracker struct {
	config        Config
	state         SpeechState
	speechStarted bool
	silenceStart  time.Time
}

// NewSpeechTracker creates a new speech tracker
func NewSpeechTracker(cfg Config) *SpeechTracker {
	return &SpeechTracker{config: cfg}
}

// Update feeds one VAD decision and returns the updated state
func (t *SpeechTracker) Update(isSpeech bool) SpeechState {
	now := time.Now()

	if isSpeech {
		if !t.speechStarted {
			t.speechStarted = true
			t.state.SpeechStart = now
		}
		t.state.IsSpeaking = true
		t.state.LastSpeech = now
		t.state.SpeechDuration = now.Sub(t.state.SpeechStart)
		t.state.SilenceDuration = 0
		t.silenceStart = time.Time{}
	} else {
		t.state.IsSpeaking = false
		if t.speechStarted {
			if t.silenceStart.IsZero() {
				t.silenceStart = now
			}
			t.state.SilenceDuration = now.Sub(t.silenceStart)
		}
	}

	return t.state
}

// ShouldEndUtterance reports whether the silence threshold was reached after
// enough speech.
func (t *SpeechTracker) ShouldEndUtterance() bool {
	return t.speechStarted &&
		t.state.SilenceDuration >= t.config.SilenceDuration &&
		t.state.SpeechDuration >= t.config.MinSpeechDuration
}

// IsValidSpeech reports whether enough speech was captured to transcribe
func (t *SpeechTracker) IsValidSpeech() bool {
	return t.state.SpeechDuration >= t.config.MinSpeechDuration
}

// Reset clears the tracker for the next utterance
func (t *SpeechTracker) Reset() {
	t.state = SpeechState{}
	t.speechStarted = false
	t.silenceStart = time.Time{}
}

// State returns the current speech state
func (t *SpeechTracker) State() SpeechState {
	return t.state
}
