// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     session
// Description: Tests for transcript validation
// License:     MIT
// ============================================================================

package session

import (
	"testing"
)

func TestValidateTranscript(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		valid bool
	}{
		{"normal speech", "eu entendo o que você está sentindo", true},
		{"short but meaningful", "sim", true},
		{"accented speech", "não sei o que fazer", true},
		{"empty", "", false},
		{"whitespace only", "   \t\n  ", false},
		{"too short", "ok", false},
		{"two runes accented", "éé", false},
		{"repeated char", "aaaa", false},
		{"repeated char uppercase", "AAAA", false},
		{"vosk error marker", "Vosk recognizer error: model not loaded", false},
		{"transcription failed marker", "transcription failed for segment", false},
		{"error prefix", "Error: timeout", false},
		{"error prefix mid-text ok", "houve um error: na fala dele", true},
		{"failed to process marker", "failed to process audio chunk", false},
		{"stt error marker", "STT error occurred", false},
		{"padded valid speech", "  tudo bem  ", true},
		{"three distinct runes", "abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateTranscript(tt.text); got != tt.valid {
				t.Errorf("ValidateTranscript(%q) = %v, want %v", tt.text, got, tt.valid)
			}
		})
	}
}

func TestIsRepeatedChar(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"aaa", true},
		{"aaaaaaa", true},
		{"aab", false},
		{"aa", false},
		{"ééé", true},
	}

	for _, tt := range tests {
		if got := isRepeatedChar(tt.text); got != tt.want {
			t.Errorf("isRepeatedChar(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
