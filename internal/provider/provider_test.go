// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     provider
// Description: Tests for provider helpers
// License:     MIT
// ============================================================================

package provider

import (
	"testing"
)

func TestParseProviderModel(t *testing.T) {
	tests := []struct {
		input     string
		wantType  Type
		wantModel string
	}{
		{"openai:gpt-4o", TypeOpenAI, "gpt-4o"},
		{"anthropic:claude-sonnet-4-20250514", TypeAnthropic, "claude-sonnet-4-20250514"},
		{"ollama:llama3.2", TypeOllama, "llama3.2"},
		{"hosted:default", TypeHosted, "default"},
		{"llama3.2", TypeOllama, "llama3.2"},
		{"mistral:7b", TypeOllama, "mistral:7b"}, // unknown prefix stays a model name
		{"", TypeOllama, ""},
	}

	for _, tt := range tests {
		gotType, gotModel := ParseProviderModel(tt.input)
		if gotType != tt.wantType || gotModel != tt.wantModel {
			t.Errorf("ParseProviderModel(%q) = (%s, %s), want (%s, %s)",
				tt.input, gotType, gotModel, tt.wantType, tt.wantModel)
		}
	}
}

func TestNormalizeMessages(t *testing.T) {
	in := []Message{
		{Role: "terapeuta", Content: "como foi a semana?"},
		{Role: "paciente", Content: "difícil"},
		{Role: "assistant", Content: "observe o tom"},
		{Role: "user", Content: "já no formato final"},
	}

	out := NormalizeMessages(in)
	if len(out) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(out))
	}

	if out[0].Role != "user" || out[0].Content != "Terapeuta: como foi a semana?" {
		t.Errorf("therapist message = %+v", out[0])
	}
	if out[1].Role != "user" || out[1].Content != "Paciente: difícil" {
		t.Errorf("patient message = %+v", out[1])
	}
	if out[2].Role != "assistant" || out[2].Content != "observe o tom" {
		t.Errorf("assistant message = %+v", out[2])
	}
	if out[3].Role != "user" || out[3].Content != "já no formato final" {
		t.Errorf("passthrough message = %+v", out[3])
	}
}

func TestMergeUserRuns(t *testing.T) {
	in := []Message{
		{Role: "user", Content: "Terapeuta: oi"},
		{Role: "user", Content: "Paciente: olá"},
		{Role: "assistant", Content: "bom começo"},
		{Role: "user", Content: "Terapeuta: como vai?"},
	}

	out := mergeUserRuns(in)
	if len(out) != 3 {
		t.Fatalf("expected 3 merged messages, got %d", len(out))
	}
	if out[0].Content != "Terapeuta: oi\nPaciente: olá" {
		t.Errorf("merged run = %q", out[0].Content)
	}
	if out[1].Role != "assistant" {
		t.Errorf("second message role = %s", out[1].Role)
	}
	if out[2].Content != "Terapeuta: como vai?" {
		t.Errorf("trailing message = %q", out[2].Content)
	}
}
