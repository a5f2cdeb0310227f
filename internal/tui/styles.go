// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     tui
// Description: Styles for the session observer TUI
// License:     MIT
// ============================================================================

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	colorPrimary   = lipgloss.Color("#8B5CF6") // Violet
	colorSecondary = lipgloss.Color("#06B6D4") // Cyan
	colorSuccess   = lipgloss.Color("#10B981") // Emerald
	colorWarning   = lipgloss.Color("#F59E0B") // Amber
	colorError     = lipgloss.Color("#EF4444") // Red
	colorMuted     = lipgloss.Color("#6B7280") // Gray
	colorText      = lipgloss.Color("#F8FAFC") // Slate 50
	colorTextMuted = lipgloss.Color("#94A3B8") // Slate 400
)

// Header styles
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	stateIdleStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Bold(true)

	stateBusyStyle = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)
)

// Turn styles
var (
	therapistStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	patientStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	supervisorStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	turnContentStyle = lipgloss.NewStyle().
				Foreground(colorText)

	partialStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted).
			Italic(true)

	timestampStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)

// Status styles
var (
	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorTextMuted)
)
