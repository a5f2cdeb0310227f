// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     session
// Description: Transcript validation (noise and error-marker filtering)
// License:     MIT
// ============================================================================

package session

import (
	"regexp"
	"strings"
)

// errorSignatures are recognizer failure markers that sometimes arrive in-band
// as transcript text instead of as errors.
var errorSignatures = []*regexp.Regexp{
	regexp.MustCompile(`(?i)vosk.*error`),
	regexp.MustCompile(`(?i)transcription failed`),
	regexp.MustCompile(`(?i)^error:`),
	regexp.MustCompile(`(?i)failed to process`),
	regexp.MustCompile(`(?i)stt error`),
}

// ValidateTranscript reports whether raw recognizer output is usable speech.
// Pure function: no side effects, no I/O.
func ValidateTranscript(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	for _, sig := range errorSignatures {
		if sig.MatchString(trimmed) {
			return false
		}
	}

	if len([]rune(trimmed)) < 3 {
		return false
	}

	if isRepeatedChar(strings.ToLower(trimmed)) {
		return false
	}

	return true
}

// isRepeatedChar reports whether the text is a single rune repeated 3+ times.
func isRepeatedChar(text string) bool {
	runes := []rune(text)
	if len(runes) < 3 {
		return false
	}
	first := runes[0]
	for _, r := range runes[1:] {
		if r != first {
			return false
		}
	}
	return true
}
