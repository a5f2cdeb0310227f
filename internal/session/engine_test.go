// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     session
// Description: Tests for the session engine
// License:     MIT
// ============================================================================

package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// completionCall records one StreamCompletion invocation
type completionCall struct {
	prompt   string
	prior    []PriorTurn
	userText string
}

// fakeCompleter streams scripted fragments and records calls
type fakeCompleter struct {
	mu        sync.Mutex
	calls     []completionCall
	fragments []string
	perFrag   time.Duration
	err       error

	// respond overrides fragments per userText when set
	respond func(userText string) []string
}

func (f *fakeCompleter) StreamCompletion(ctx context.Context, systemPrompt string, prior []PriorTurn, userText string, onFragment func(fragment string)) error {
	f.mu.Lock()
	f.calls = append(f.calls, completionCall{prompt: systemPrompt, prior: prior, userText: userText})
	fragments := f.fragments
	if f.respond != nil {
		fragments = f.respond(userText)
	}
	f.mu.Unlock()

	for _, fr := range fragments {
		if f.perFrag > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(f.perFrag):
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		onFragment(fr)
	}
	return f.err
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeCompleter) call(i int) completionCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

// waitForEvent drains the observer channel until an event of the wanted kind
// arrives or the timeout expires.
func waitForEvent(t *testing.T, engine *Engine, kind EventKind, timeout time.Duration) Event {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-engine.Events():
			if !ok {
				t.Fatal("event channel closed")
			}
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event kind %v", kind)
		}
	}
}

// waitForSupervisorTurn waits for a committed supervisor turn
func waitForSupervisorTurn(t *testing.T, engine *Engine, timeout time.Duration) Turn {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-engine.Events():
			if ev.Kind == EventTurnAppended && ev.Turn.Role == RoleSupervisor {
				return ev.Turn
			}
		case <-deadline:
			t.Fatal("timed out waiting for supervisor turn")
		}
	}
}

func newTestEngine(t *testing.T, completer Completer) *Engine {
	t.Helper()
	engine := NewEngine(EngineConfig{
		Supervised: true,
		Completer:  completer,
	})
	engine.Start()
	t.Cleanup(engine.Stop)
	return engine
}

func TestTherapistTurnTriggersSupervision(t *testing.T) {
	completer := &fakeCompleter{fragments: []string{"Isso ", "é ", "ótimo."}}
	engine := newTestEngine(t, completer)

	engine.SubmitTranscript(Transcript{
		Text:   "eu entendo o que você está dizendo",
		Source: SourceMicrophone,
	})

	turn := waitForSupervisorTurn(t, engine, 2*time.Second)
	if turn.Content != "Isso é ótimo." {
		t.Errorf("supervisor turn = %q, want fragment concatenation", turn.Content)
	}

	turns := engine.Snapshot().Turns
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != RoleTherapist || turns[1].Role != RoleSupervisor {
		t.Errorf("turn roles = %s, %s", turns[0].Role, turns[1].Role)
	}

	if completer.callCount() != 1 {
		t.Fatalf("expected 1 completion call, got %d", completer.callCount())
	}
	call := completer.call(0)
	if call.prompt != DefaultSupervisionPrompt {
		t.Error("supervised engine should use the supervision prompt")
	}
	if len(call.prior) != 0 {
		t.Errorf("first turn should have empty prior context, got %d", len(call.prior))
	}
	if call.userText != "eu entendo o que você está dizendo" {
		t.Errorf("userText = %q", call.userText)
	}
}

func TestPatientTurnDoesNotTriggerSupervision(t *testing.T) {
	completer := &fakeCompleter{fragments: []string{"nunca"}}
	engine := newTestEngine(t, completer)

	engine.SubmitTranscript(Transcript{
		Text:   "tenho me sentido muito cansado",
		Source: SourceSystemAudio,
	})

	waitForEvent(t, engine, EventTurnAppended, 2*time.Second)
	time.Sleep(100 * time.Millisecond)

	if completer.callCount() != 0 {
		t.Errorf("patient turn triggered %d completions", completer.callCount())
	}
	if n := engine.Log().Len(); n != 1 {
		t.Errorf("expected 1 turn, got %d", n)
	}
}

func TestInvalidTranscriptIsDropped(t *testing.T) {
	completer := &fakeCompleter{fragments: []string{"nunca"}}
	engine := newTestEngine(t, completer)

	engine.SubmitTranscript(Transcript{Text: "ok", Source: SourceMicrophone})

	ev := waitForEvent(t, engine, EventDiagnostic, 2*time.Second)
	if !errors.Is(ev.Err, ErrValidationRejected) {
		t.Errorf("diagnostic error = %v", ev.Err)
	}

	if n := engine.Log().Len(); n != 0 {
		t.Errorf("rejected transcript appended %d turns", n)
	}
	if completer.callCount() != 0 {
		t.Error("rejected transcript triggered a completion")
	}
}

func TestPreemptionDiscardsSupersededStream(t *testing.T) {
	completer := &fakeCompleter{
		perFrag: 30 * time.Millisecond,
		respond: func(userText string) []string {
			if userText == "primeira pergunta que fiz" {
				return []string{"resposta ", "lenta ", "um ", "dois ", "três ", "quatro ", "cinco"}
			}
			return []string{"resposta final"}
		},
	}
	engine := newTestEngine(t, completer)

	engine.SubmitTranscript(Transcript{Text: "primeira pergunta que fiz", Source: SourceMicrophone})
	waitForEvent(t, engine, EventPartialResponse, 2*time.Second)

	// Preempt while the first stream is mid-flight.
	engine.SubmitTranscript(Transcript{Text: "segunda pergunta que fiz", Source: SourceMicrophone})

	turn := waitForSupervisorTurn(t, engine, 3*time.Second)
	if turn.Content != "resposta final" {
		t.Errorf("committed turn = %q, want the superseding stream's output", turn.Content)
	}

	// Let any stragglers land, then check exactly one supervisor turn exists.
	time.Sleep(300 * time.Millisecond)
	supervisor := 0
	for _, tr := range engine.Snapshot().Turns {
		if tr.Role == RoleSupervisor {
			supervisor++
		}
	}
	if supervisor != 1 {
		t.Errorf("expected exactly 1 supervisor turn, got %d", supervisor)
	}
}

func TestQuickActionUsesFullHistory(t *testing.T) {
	completer := &fakeCompleter{fragments: []string{"resumo da sessão"}}
	engine := newTestEngine(t, completer)

	engine.SubmitTranscript(Transcript{Text: "como você tem dormido?", Source: SourceMicrophone})
	waitForSupervisorTurn(t, engine, 2*time.Second)
	engine.SubmitTranscript(Transcript{Text: "tenho dormido muito mal", Source: SourceSystemAudio})
	waitForEvent(t, engine, EventTurnAppended, 2*time.Second)

	before := engine.Log().Len()
	engine.QuickAction("Resuma os pontos principais da sessão até agora")

	turn := waitForSupervisorTurn(t, engine, 2*time.Second)
	if turn.Content != "resumo da sessão" {
		t.Errorf("quick action turn = %q", turn.Content)
	}

	// The action text itself must not appear as a conversation turn.
	if n := engine.Log().Len(); n != before+1 {
		t.Errorf("quick action appended %d turns, want 1 (the response)", n-before)
	}

	last := completer.call(completer.callCount() - 1)
	if len(last.prior) != before {
		t.Errorf("quick action prior = %d turns, want full history of %d", len(last.prior), before)
	}
}

func TestEmptyStreamCommitsNothing(t *testing.T) {
	completer := &fakeCompleter{fragments: nil}
	engine := newTestEngine(t, completer)

	engine.SubmitTranscript(Transcript{Text: "uma pergunta qualquer", Source: SourceMicrophone})

	// Wait for the dispatcher to go busy and come back.
	waitForEvent(t, engine, EventStateChanged, 2*time.Second)
	ev := waitForEvent(t, engine, EventStateChanged, 2*time.Second)
	if ev.State != StateIdle {
		t.Errorf("expected return to idle, got %v", ev.State)
	}

	for _, tr := range engine.Snapshot().Turns {
		if tr.Role == RoleSupervisor {
			t.Error("empty stream committed a supervisor turn")
		}
	}
}

func TestStreamFailureEmitsFailure(t *testing.T) {
	completer := &fakeCompleter{
		fragments: []string{"parcial "},
		err:       errors.New("connection reset"),
	}
	engine := newTestEngine(t, completer)

	engine.SubmitTranscript(Transcript{Text: "uma pergunta qualquer", Source: SourceMicrophone})

	ev := waitForEvent(t, engine, EventFailure, 2*time.Second)
	var streamErr *StreamError
	if !errors.As(ev.Err, &streamErr) {
		t.Errorf("failure error = %T, want *StreamError", ev.Err)
	}

	for _, tr := range engine.Snapshot().Turns {
		if tr.Role == RoleSupervisor {
			t.Error("failed stream committed its partial output")
		}
	}
	if engine.State() != StateIdle {
		t.Errorf("state after failure = %v, want idle", engine.State())
	}
}

func TestMissingCompleterReportsConfiguration(t *testing.T) {
	engine := newTestEngine(t, nil)

	engine.SubmitTranscript(Transcript{Text: "uma pergunta qualquer", Source: SourceMicrophone})

	ev := waitForEvent(t, engine, EventFailure, 2*time.Second)
	var cfgErr *ConfigurationError
	if !errors.As(ev.Err, &cfgErr) {
		t.Errorf("failure error = %T, want *ConfigurationError", ev.Err)
	}
}

func TestNewSessionDiscardsEverything(t *testing.T) {
	completer := &fakeCompleter{fragments: []string{"resposta"}}
	engine := newTestEngine(t, completer)

	engine.SubmitTranscript(Transcript{Text: "uma pergunta qualquer", Source: SourceMicrophone})
	waitForSupervisorTurn(t, engine, 2*time.Second)
	oldID := engine.Snapshot().ID

	engine.NewSession()
	waitForEvent(t, engine, EventSessionReset, 2*time.Second)

	snap := engine.Snapshot()
	if len(snap.Turns) != 0 {
		t.Errorf("reset kept %d turns", len(snap.Turns))
	}
	if snap.ID == oldID {
		t.Error("reset kept the old session id")
	}
}

// stubbornCompleter holds its stream until released, then emits its fragment
// and returns nil without ever checking the context, like a provider whose
// response races the cancellation.
type stubbornCompleter struct {
	release  chan struct{}
	fragment string
}

func (s *stubbornCompleter) StreamCompletion(ctx context.Context, _ string, _ []PriorTurn, _ string, onFragment func(fragment string)) error {
	<-s.release
	onFragment(s.fragment)
	return nil
}

func TestResetDiscardsStreamFinishingAfterReset(t *testing.T) {
	// The race only bites when the late fragment wins the select against the
	// cancelled context, so run a handful of rounds.
	for i := 0; i < 10; i++ {
		release := make(chan struct{})
		completer := &stubbornCompleter{release: release, fragment: "resposta atrasada"}
		engine := newTestEngine(t, completer)

		engine.SubmitTranscript(Transcript{Text: "uma pergunta qualquer", Source: SourceMicrophone})
		waitForEvent(t, engine, EventStateChanged, 2*time.Second)

		engine.NewSession()
		waitForEvent(t, engine, EventSessionReset, 2*time.Second)
		close(release)

		time.Sleep(50 * time.Millisecond)
		for _, tr := range engine.Snapshot().Turns {
			if tr.Role == RoleSupervisor {
				t.Fatalf("round %d: stream finishing after reset committed %q into the new session", i, tr.Content)
			}
		}
		if n := engine.Log().Len(); n != 0 {
			t.Fatalf("round %d: new session has %d turns", i, n)
		}
		engine.Stop()
	}
}

func TestSupervisionContextSwitch(t *testing.T) {
	completer := &fakeCompleter{fragments: []string{"resposta"}}
	engine := newTestEngine(t, completer)

	engine.SetSupervisionContext(SupervisionContext{
		UseDefaultPrompt: false,
		CustomPrompt:     "Você é um supervisor lacaniano.",
	})

	engine.SubmitTranscript(Transcript{Text: "uma pergunta qualquer", Source: SourceMicrophone})
	waitForSupervisorTurn(t, engine, 2*time.Second)

	if got := completer.call(0).prompt; got != "Você é um supervisor lacaniano." {
		t.Errorf("prompt = %q, want the custom prompt", got)
	}
}

func TestUnsupervisedUsesChatPrompt(t *testing.T) {
	completer := &fakeCompleter{fragments: []string{"resposta"}}
	engine := NewEngine(EngineConfig{
		Supervised: false,
		Completer:  completer,
	})
	engine.Start()
	t.Cleanup(engine.Stop)

	engine.SubmitTranscript(Transcript{Text: "uma pergunta qualquer", Source: SourceMicrophone})
	waitForSupervisorTurn(t, engine, 2*time.Second)

	if got := completer.call(0).prompt; got != DefaultChatPrompt {
		t.Errorf("unsupervised prompt = %q, want chat prompt", got)
	}
}
