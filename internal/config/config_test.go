// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     config
// Description: Tests for configuration loading
// License:     MIT
// ============================================================================

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.General.LogLevel != "info" {
		t.Errorf("log level = %s", cfg.General.LogLevel)
	}
	if cfg.General.Language != "pt" {
		t.Errorf("language = %s", cfg.General.Language)
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("sample rate = %d", cfg.Audio.SampleRate)
	}
	if cfg.STT.Backend != "vosk" || cfg.STT.URL != "ws://localhost:2700" {
		t.Errorf("stt = %s %s", cfg.STT.Backend, cfg.STT.URL)
	}
	if cfg.Providers.OllamaURL != "http://localhost:11434" {
		t.Errorf("ollama url = %s", cfg.Providers.OllamaURL)
	}
	if cfg.VAD.SilenceDurationMs != 1500 {
		t.Errorf("silence duration = %d", cfg.VAD.SilenceDurationMs)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing config should not error: %v", err)
	}
	if cfg.STT.Backend != "vosk" {
		t.Errorf("backend = %s", cfg.STT.Backend)
	}
}

func TestLoadOverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[general]
log_level = "debug"

[stt]
backend = "whisper"

[providers]
openai_key = "$TEST_OPENAI_KEY"
openai_model = "gpt-4o-mini"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TEST_OPENAI_KEY", "sk-from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.General.LogLevel != "debug" {
		t.Errorf("log level = %s", cfg.General.LogLevel)
	}
	if cfg.STT.Backend != "whisper" {
		t.Errorf("backend = %s", cfg.STT.Backend)
	}
	// Whisper backend gets the whisper default URL.
	if cfg.STT.URL != "http://localhost:8090" {
		t.Errorf("stt url = %s", cfg.STT.URL)
	}
	if cfg.Providers.OpenAIKey != "sk-from-env" {
		t.Errorf("openai key = %s", cfg.Providers.OpenAIKey)
	}
	// Untouched sections keep defaults.
	if cfg.Audio.SampleRate != 16000 {
		t.Errorf("sample rate = %d", cfg.Audio.SampleRate)
	}
}

func TestSupervisedAndUIToggles(t *testing.T) {
	// Unset: supervised defers to the settings snapshot, UI surfaces are on.
	cfg := Default()
	if cfg.General.Supervised != nil {
		t.Errorf("default supervised = %v, want unset", *cfg.General.Supervised)
	}
	if !cfg.UI.TUIEnabled() || !cfg.UI.TrayEnabled() {
		t.Error("UI surfaces should default to enabled")
	}

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[general]
supervised = false

[ui]
tui = false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.General.Supervised == nil || *cfg.General.Supervised {
		t.Error("supervised = false should be an explicit override")
	}
	if cfg.UI.TUIEnabled() {
		t.Error("tui = false should disable the observer interface")
	}
	if !cfg.UI.TrayEnabled() {
		t.Error("untouched tray setting should stay enabled")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[general\nbroken"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("invalid TOML should fail")
	}
}
