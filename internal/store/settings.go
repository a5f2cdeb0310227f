// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     store
// Description: JSON settings snapshot (prompt preferences, quick actions)
// License:     MIT
// ============================================================================

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/supervisia/supervisia/internal/session"
)

// Settings is the user-adjustable state that survives restarts
type Settings struct {
	UseDefaultPrompt bool     `json:"use_default_prompt"`
	CustomPrompt     string   `json:"custom_prompt"`
	Supervised       bool     `json:"supervised"`
	QuickActions     []string `json:"quick_actions"`
	Provider         string   `json:"provider,omitempty"`
	Model            string   `json:"model,omitempty"`
}

// DefaultSettings returns the defaults used when no settings file exists
func DefaultSettings() Settings {
	return Settings{
		UseDefaultPrompt: true,
		Supervised:       true,
		QuickActions:     append([]string(nil), session.DefaultQuickActions...),
	}
}

// SupervisionContext converts the settings into the engine's prompt context
func (s Settings) SupervisionContext() session.SupervisionContext {
	return session.SupervisionContext{
		UseDefaultPrompt: s.UseDefaultPrompt,
		CustomPrompt:     s.CustomPrompt,
	}
}

// SettingsPath returns the default settings file location
func SettingsPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, "supervisia", "settings.json"), nil
}

// LoadSettings reads settings from path. A missing or corrupt file falls back
// to defaults so a bad write never blocks startup.
func LoadSettings(path string) Settings {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultSettings()
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return DefaultSettings()
	}

	if len(s.QuickActions) == 0 {
		s.QuickActions = append([]string(nil), session.DefaultQuickActions...)
	}

	return s
}

// SaveSettings writes settings atomically (temp file + rename)
func SaveSettings(path string, s Settings) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace settings file: %w", err)
	}

	return nil
}
