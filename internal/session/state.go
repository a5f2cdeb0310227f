// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     session
// Description: Supervision dispatcher state machine
// License:     MIT
// ============================================================================

package session

import (
	"sync"
)

// State represents the supervision dispatcher state
type State int

const (
	// StateIdle - no completion in flight
	StateIdle State = iota

	// StateAwaitingResponse - a completion stream is in flight
	StateAwaitingResponse
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaiting-response"
	default:
		return "unknown"
	}
}

// StateMachine manages dispatcher state transitions. Observers learn about
// changes through the engine's event channel.
type StateMachine struct {
	mu           sync.RWMutex
	currentState State
}

// NewStateMachine creates a new state machine
func NewStateMachine() *StateMachine {
	return &StateMachine{currentState: StateIdle}
}

// Current returns the current state
func (sm *StateMachine) Current() State {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.currentState
}

// Transition changes to a new state
func (sm *StateMachine) Transition(newState State) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.currentState = newState
}
