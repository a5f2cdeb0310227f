// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     session
// Description: Single-consumer session engine (turn routing + supervision)
// License:     MIT
// ============================================================================

package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/supervisia/supervisia/pkg/logging"
)

// EngineConfig configures the session engine.
type EngineConfig struct {
	// Supervised routes therapist turns through the supervision prompt. When
	// false therapist turns still trigger a completion, but with the plain
	// chat prompt (the supervision collaborator is considered detached).
	Supervised bool

	// Store persists conversation snapshots. Optional.
	Store Persister

	// Completer drives AI completions. Optional; without one therapist turns
	// surface a ConfigurationError instead of a supervisor response.
	Completer Completer

	// Supervision is the initial prompt configuration.
	Supervision SupervisionContext

	// EventBuffer is the observer channel capacity (default 256).
	EventBuffer int
}

// internal loop events

type transcriptEvent struct {
	transcript Transcript
}

type quickActionEvent struct {
	text string
}

type fragmentEvent struct {
	gen  int
	text string
}

type streamDoneEvent struct {
	gen int
	err error
}

type contextEvent struct {
	sc SupervisionContext
}

type resetEvent struct{}

// Engine coordinates transcript routing, the conversation log and the
// supervision dispatcher. All state transitions happen on one goroutine; the
// completion stream and capture pipelines talk to it only through the event
// channel, which preserves the single-writer discipline on the conversation.
type Engine struct {
	cfg    EngineConfig
	logger *logging.Logger

	log    *ConversationLog
	router *Router
	state  *StateMachine

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	events    chan interface{}
	observers chan Event

	// loop-owned state, never touched from outside the loop goroutine
	supervision  SupervisionContext
	gen          int
	streamCancel context.CancelFunc
	partial      strings.Builder
}

// NewEngine creates a session engine. Call Start to begin processing.
func NewEngine(cfg EngineConfig) *Engine {
	ctx, cancel := context.WithCancel(context.Background())

	bufSize := cfg.EventBuffer
	if bufSize <= 0 {
		bufSize = 256
	}

	log := NewConversationLog(ctx, cfg.Store)

	return &Engine{
		cfg:         cfg,
		logger:      logging.New("session-engine"),
		log:         log,
		router:      NewRouter(log),
		state:       NewStateMachine(),
		ctx:         ctx,
		cancel:      cancel,
		events:      make(chan interface{}, 64),
		observers:   make(chan Event, bufSize),
		supervision: cfg.Supervision,
	}
}

// Start launches the engine loop.
func (e *Engine) Start() {
	e.wg.Add(1)
	go e.loop()
}

// Stop cancels the engine. Any in-flight completion is cancelled and no
// supervisor turn is committed for it.
func (e *Engine) Stop() {
	e.cancel()
	e.wg.Wait()
}

// Events returns the observer channel. Events are dropped when the observer
// falls behind; the engine never blocks on it.
func (e *Engine) Events() <-chan Event {
	return e.observers
}

// Log exposes the conversation log for read-only access.
func (e *Engine) Log() *ConversationLog {
	return e.log
}

// State returns the current dispatcher state.
func (e *Engine) State() State {
	return e.state.Current()
}

// Snapshot returns a copy of the active conversation.
func (e *Engine) Snapshot() Conversation {
	return e.log.Snapshot()
}

// SubmitTranscript feeds a recognizer result into the engine.
func (e *Engine) SubmitTranscript(t Transcript) {
	e.post(transcriptEvent{transcript: t})
}

// QuickAction triggers a completion with the literal action text as input and
// the full current history as prior context. No therapist turn is appended.
func (e *Engine) QuickAction(text string) {
	e.post(quickActionEvent{text: text})
}

// SetSupervisionContext replaces the prompt configuration used for the next
// trigger. In-flight completions keep the context they started with.
func (e *Engine) SetSupervisionContext(sc SupervisionContext) {
	e.post(contextEvent{sc: sc})
}

// NewSession cancels any in-flight completion and starts a fresh conversation.
func (e *Engine) NewSession() {
	e.post(resetEvent{})
}

func (e *Engine) post(ev interface{}) {
	select {
	case e.events <- ev:
	case <-e.ctx.Done():
	}
}

func (e *Engine) loop() {
	defer e.wg.Done()

	for {
		select {
		case <-e.ctx.Done():
			e.cancelInFlight()
			return

		case ev := <-e.events:
			switch ev := ev.(type) {
			case transcriptEvent:
				e.handleTranscript(ev.transcript)
			case quickActionEvent:
				e.handleQuickAction(ev.text)
			case fragmentEvent:
				e.handleFragment(ev)
			case streamDoneEvent:
				e.handleStreamDone(ev)
			case contextEvent:
				e.supervision = ev.sc
			case resetEvent:
				e.handleReset()
			}
		}
	}
}

func (e *Engine) handleTranscript(t Transcript) {
	turn, ok := e.router.Route(t)
	if !ok {
		e.notify(Event{Kind: EventDiagnostic, Text: t.Text, Err: ErrValidationRejected})
		return
	}

	e.notify(Event{Kind: EventTranscription, Text: turn.Content})
	e.notify(Event{Kind: EventTurnAppended, Turn: turn})

	if turn.Role != RoleTherapist {
		return
	}

	// Prior context excludes the triggering turn; the snapshot is taken now,
	// so later-arriving turns never leak into this request.
	turns := e.log.Turns()
	prior := priorContext(turns[:len(turns)-1])
	e.startCompletion(turn.Content, prior)
}

func (e *Engine) handleQuickAction(text string) {
	e.notify(Event{Kind: EventTranscription, Text: text})

	prior := priorContext(e.log.Turns())
	e.startCompletion(text, prior)
}

// startCompletion preempts any in-flight stream and launches a new one. The
// generation counter guards against late fragments from the cancelled stream.
func (e *Engine) startCompletion(userText string, prior []PriorTurn) {
	e.cancelInFlight()

	if e.cfg.Completer == nil {
		e.notify(Event{Kind: EventFailure, Err: &ConfigurationError{Reason: "no AI provider selected"}})
		return
	}

	e.gen++
	gen := e.gen
	e.partial.Reset()

	prompt := e.supervision.EffectivePrompt(e.cfg.Supervised)

	ctx, cancel := context.WithCancel(e.ctx)
	e.streamCancel = cancel
	e.transition(StateAwaitingResponse)

	go func() {
		err := e.cfg.Completer.StreamCompletion(ctx, prompt, prior, userText, func(fragment string) {
			select {
			case e.events <- fragmentEvent{gen: gen, text: fragment}:
			case <-ctx.Done():
			}
		})
		select {
		case e.events <- streamDoneEvent{gen: gen, err: err}:
		case <-e.ctx.Done():
		}
	}()
}

func (e *Engine) handleFragment(ev fragmentEvent) {
	if ev.gen != e.gen {
		// Fragment from a preempted stream; discard.
		return
	}
	e.partial.WriteString(ev.text)
	e.notify(Event{Kind: EventPartialResponse, Partial: e.partial.String()})
}

func (e *Engine) handleStreamDone(ev streamDoneEvent) {
	if ev.gen != e.gen {
		// A newer trigger superseded this stream; nothing to commit.
		return
	}

	full := e.partial.String()
	e.partial.Reset()
	e.streamCancel = nil

	switch {
	case ev.err == nil:
		if full != "" {
			turn := NewTurn(RoleSupervisor, full)
			e.log.Append(turn)
			e.notify(Event{Kind: EventTurnAppended, Turn: turn})
		}

	case errors.Is(ev.err, context.Canceled):
		e.logger.Debug("Completion stream cancelled", "discarded_chars", len(full))

	default:
		var cfgErr *ConfigurationError
		if errors.As(ev.err, &cfgErr) {
			e.notify(Event{Kind: EventFailure, Err: cfgErr})
		} else {
			e.logger.Warn("Completion stream failed", "error", ev.err, "discarded_chars", len(full))
			e.notify(Event{Kind: EventFailure, Err: &StreamError{Err: ev.err}})
		}
	}

	e.transition(StateIdle)
}

func (e *Engine) handleReset() {
	e.cancelInFlight()
	// A stream that already posted its fragments or done event before noticing
	// the cancel must not land in the fresh conversation; invalidating the
	// generation makes the loop discard anything still queued.
	e.gen++
	e.partial.Reset()
	e.log.Reset()
	e.transition(StateIdle)
	e.notify(Event{Kind: EventSessionReset})
}

func (e *Engine) cancelInFlight() {
	if e.streamCancel != nil {
		e.streamCancel()
		e.streamCancel = nil
	}
}

func (e *Engine) transition(s State) {
	if e.state.Current() == s {
		return
	}
	e.state.Transition(s)
	e.notify(Event{Kind: EventStateChanged, State: s})
}

func (e *Engine) notify(ev Event) {
	select {
	case e.observers <- ev:
	default:
		// Observer fell behind; drop rather than stall the loop.
	}
}
