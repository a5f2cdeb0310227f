// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     tui
// Description: Bubbletea observer model for a running supervision session
// License:     MIT
// ============================================================================

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/supervisia/supervisia/internal/session"
)

// eventMsg wraps an engine event for the bubbletea loop
type eventMsg struct {
	event session.Event
}

// eventsClosedMsg signals that the engine shut down
type eventsClosedMsg struct{}

// Model is the observer TUI. It renders the session log newest-first and the
// dispatcher state; all session changes flow in through engine events.
type Model struct {
	engine *session.Engine

	width   int
	height  int
	ready   bool
	vp      viewport.Model
	partial string
	state   session.State
	lastErr error
	turns   []session.Turn

	quickActions []string
}

// Config holds observer configuration
type Config struct {
	Engine       *session.Engine
	QuickActions []string
}

// New creates the observer model
func New(cfg Config) Model {
	quickActions := cfg.QuickActions
	if len(quickActions) == 0 {
		quickActions = session.DefaultQuickActions
	}

	return Model{
		engine:       cfg.Engine,
		state:        session.StateIdle,
		quickActions: quickActions,
	}
}

// Init starts listening for engine events
func (m Model) Init() tea.Cmd {
	return m.waitForEvent()
}

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.engine.Events()
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{event: ev}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 3
		footerHeight := 2
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - headerHeight - footerHeight
		}
		m.vp.SetContent(m.renderTurns())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "ctrl+n":
			m.engine.NewSession()
			return m, nil
		case "1", "2", "3", "4":
			idx := int(msg.String()[0] - '1')
			if idx < len(m.quickActions) {
				m.engine.QuickAction(m.quickActions[idx])
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd

	case eventMsg:
		m.apply(msg.event)
		if m.ready {
			m.vp.SetContent(m.renderTurns())
		}
		return m, m.waitForEvent()

	case eventsClosedMsg:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// apply folds one engine event into the view state
func (m *Model) apply(ev session.Event) {
	switch ev.Kind {
	case session.EventTurnAppended:
		m.turns = append(m.turns, ev.Turn)
		m.partial = ""
	case session.EventPartialResponse:
		m.partial = ev.Partial
	case session.EventStateChanged:
		m.state = ev.State
	case session.EventFailure:
		m.lastErr = ev.Err
	case session.EventSessionReset:
		m.turns = nil
		m.partial = ""
		m.lastErr = nil
	}
}

// View renders the observer
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.vp.View(),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("Supervisia")

	var state string
	if m.state == session.StateAwaitingResponse {
		state = stateBusyStyle.Render("● supervisando")
	} else {
		state = stateIdleStyle.Render("● ouvindo")
	}

	line := fmt.Sprintf("%s  %s", title, state)
	if m.lastErr != nil {
		line += "  " + errorStyle.Render(m.lastErr.Error())
	}

	return line + "\n" + strings.Repeat("─", max(m.width, 1)) + "\n"
}

func (m Model) renderTurns() string {
	var b strings.Builder

	if m.partial != "" {
		b.WriteString(supervisorStyle.Render("Supervisor"))
		b.WriteString("\n")
		b.WriteString(partialStyle.Render(m.partial))
		b.WriteString("\n\n")
	}

	// Newest first, like a supervision feed.
	for i := len(m.turns) - 1; i >= 0; i-- {
		t := m.turns[i]
		b.WriteString(roleLabel(t.Role))
		b.WriteString(" ")
		b.WriteString(timestampStyle.Render(time.UnixMilli(t.Timestamp).Format("15:04:05")))
		b.WriteString("\n")
		b.WriteString(turnContentStyle.Render(t.Content))
		b.WriteString("\n\n")
	}

	if b.Len() == 0 {
		return partialStyle.Render("Aguardando a sessão...")
	}

	return b.String()
}

func roleLabel(role session.Role) string {
	switch role {
	case session.RoleTherapist:
		return therapistStyle.Render("Terapeuta")
	case session.RolePatient:
		return patientStyle.Render("Paciente")
	default:
		return supervisorStyle.Render("Supervisor")
	}
}

func (m Model) renderFooter() string {
	return footerStyle.Render("[1-4] ações rápidas  [ctrl+n] nova sessão  [q] sair")
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
