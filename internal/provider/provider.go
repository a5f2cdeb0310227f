// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     provider
// Description: AI completion provider abstraction
// License:     MIT
// ============================================================================

package provider

import (
	"context"
)

// Provider is a chat completion backend.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Chat performs a blocking chat completion
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// ChatStream performs a streaming chat completion, invoking onChunk for
	// each fragment in arrival order. onChunk is called with done=true exactly
	// once on normal completion.
	ChatStream(ctx context.Context, req *ChatRequest, onChunk func(chunk string, done bool)) error

	// ListModels lists available models
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// HealthCheck checks if the provider is reachable
	HealthCheck(ctx context.Context) error
}

// Message represents a chat message
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a chat request
type ChatRequest struct {
	Messages    []Message
	Model       string
	System      string
	MaxTokens   int
	Temperature float64
}

// ChatResponse represents a chat response
type ChatResponse struct {
	Message Message
	Model   string
	Done    bool
}

// ModelInfo represents model information
type ModelInfo struct {
	Name     string
	Provider string
}

// Type identifies a provider implementation.
type Type string

const (
	TypeOllama    Type = "ollama"
	TypeOpenAI    Type = "openai"
	TypeAnthropic Type = "anthropic"
	TypeHosted    Type = "hosted"
)

// ParseProviderModel parses a model string like "openai:gpt-4o" into provider
// type and model name. Unprefixed models default to Ollama.
func ParseProviderModel(modelStr string) (Type, string) {
	for i, c := range modelStr {
		if c == ':' {
			switch modelStr[:i] {
			case "openai":
				return TypeOpenAI, modelStr[i+1:]
			case "anthropic":
				return TypeAnthropic, modelStr[i+1:]
			case "ollama":
				return TypeOllama, modelStr[i+1:]
			case "hosted":
				return TypeHosted, modelStr[i+1:]
			}
			break
		}
	}
	return TypeOllama, modelStr
}

// NormalizeMessages maps stored speaker roles onto the user/assistant wire
// roles providers accept. Non-assistant speakers become user messages with a
// speaker tag so the model keeps track of who said what.
func NormalizeMessages(msgs []Message) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case "assistant", "user", "system":
			out = append(out, m)
		case "terapeuta":
			out = append(out, Message{Role: "user", Content: "Terapeuta: " + m.Content})
		case "paciente":
			out = append(out, Message{Role: "user", Content: "Paciente: " + m.Content})
		default:
			out = append(out, Message{Role: "user", Content: m.Content})
		}
	}
	return out
}
