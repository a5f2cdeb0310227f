// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     provider
// Description: Session completer backed by the provider manager
// License:     MIT
// ============================================================================

package provider

import (
	"context"

	"github.com/supervisia/supervisia/internal/session"
)

// SessionCompleter adapts the provider manager to the session engine's
// streaming contract.
type SessionCompleter struct {
	manager *Manager
	model   string
}

// NewSessionCompleter creates the adapter. model may carry a provider prefix
// ("openai:gpt-4o"); it overrides the manager's selection per request.
func NewSessionCompleter(manager *Manager, model string) *SessionCompleter {
	return &SessionCompleter{manager: manager, model: model}
}

// StreamCompletion drives one completion stream. Unresolvable providers are
// reported as a session.ConfigurationError so the engine surfaces them as a
// blocking message rather than a stream failure.
func (c *SessionCompleter) StreamCompletion(ctx context.Context, systemPrompt string, prior []session.PriorTurn, userText string, onFragment func(fragment string)) error {
	p, model, err := c.resolve()
	if err != nil {
		return &session.ConfigurationError{Reason: err.Error()}
	}

	msgs := make([]Message, 0, len(prior)+1)
	for _, t := range prior {
		msgs = append(msgs, Message{Role: t.Role, Content: t.Content})
	}
	msgs = append(msgs, Message{Role: "user", Content: userText})

	req := &ChatRequest{
		Messages: msgs,
		Model:    model,
		System:   systemPrompt,
	}

	return p.ChatStream(ctx, req, func(chunk string, done bool) {
		if chunk != "" {
			onFragment(chunk)
		}
	})
}

func (c *SessionCompleter) resolve() (Provider, string, error) {
	if c.model != "" {
		ptype, model := ParseProviderModel(c.model)
		if p, ok := c.manager.Get(string(ptype)); ok {
			return p, model, nil
		}
	}
	p, err := c.manager.Resolve()
	if err != nil {
		return nil, "", err
	}
	return p, "", nil
}
