// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     session
// Description: Completion streaming contract
// License:     MIT
// ============================================================================

package session

import "context"

// PriorTurn is a role/content pair handed to the completion provider as prior
// context. Roles are passed through as stored (terapeuta, paciente, assistant);
// provider clients normalize them to their own wire format.
type PriorTurn struct {
	Role    string
	Content string
}

// Completer drives a single external AI completion. Implementations must emit
// fragments in arrival order, observe ctx cancellation between fragments, and
// return a *ConfigurationError when no provider can be resolved.
type Completer interface {
	StreamCompletion(ctx context.Context, systemPrompt string, prior []PriorTurn, userText string, onFragment func(fragment string)) error
}

// priorContext maps turns to the role/content pair list sent as history.
func priorContext(turns []Turn) []PriorTurn {
	prior := make([]PriorTurn, len(turns))
	for i, t := range turns {
		prior[i] = PriorTurn{Role: string(t.Role), Content: t.Content}
	}
	return prior
}
