// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     stt
// Description: Speech-to-text interface
// License:     MIT
// ============================================================================

package stt

import (
	"context"
	"time"
)

// Transcriber converts an audio segment to text
type Transcriber interface {
	// Transcribe converts float32 PCM samples to text
	Transcribe(ctx context.Context, samples []float32, sampleRate int) (*Result, error)

	// Name returns the backend name
	Name() string

	// HealthCheck verifies the backend is reachable
	HealthCheck(ctx context.Context) error

	// Close releases resources
	Close() error
}

// Result holds a transcription result
type Result struct {
	Text     string
	Language string
	Duration time.Duration
}

// Config holds transcription configuration
type Config struct {
	// Backend selects the transcription backend ("vosk" or "whisper")
	Backend string

	// BaseURL is the backend server URL
	BaseURL string

	// Language is the expected language (e.g. "pt")
	Language string

	// Timeout bounds a single transcription request
	Timeout time.Duration
}

// DefaultConfig returns default transcription configuration
func DefaultConfig() Config {
	return Config{
		Backend:  "vosk",
		BaseURL:  "ws://localhost:2700",
		Language: "pt",
		Timeout:  30 * time.Second,
	}
}

// New creates a transcriber from config
func New(cfg Config) (Transcriber, error) {
	switch cfg.Backend {
	case "whisper":
		return NewWhisperHTTP(cfg)
	default:
		return NewVoskClient(cfg)
	}
}
