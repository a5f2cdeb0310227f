// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     config
// Description: TOML configuration with defaults
// License:     MIT
// ============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration
type Config struct {
	General   GeneralConfig   `toml:"general"`
	Audio     AudioConfig     `toml:"audio"`
	VAD       VADConfig       `toml:"vad"`
	STT       STTConfig       `toml:"stt"`
	Providers ProvidersConfig `toml:"providers"`
	Store     StoreConfig     `toml:"store"`
	UI        UIConfig        `toml:"ui"`
}

// GeneralConfig holds engine-level settings
type GeneralConfig struct {
	LogLevel string `toml:"log_level"`
	Language string `toml:"language"`

	// Supervised overrides the persisted settings snapshot when set; left
	// unset the snapshot value wins.
	Supervised *bool `toml:"supervised"`
}

// AudioConfig holds capture settings
type AudioConfig struct {
	MicrophoneDevice string `toml:"microphone_device"`
	LoopbackDevice   string `toml:"loopback_device"`
	SampleRate       int    `toml:"sample_rate"`
	BufferSize       int    `toml:"buffer_size"`
}

// VADConfig holds voice activity detection settings
type VADConfig struct {
	Mode                int `toml:"mode"`
	SilenceDurationMs   int `toml:"silence_duration_ms"`
	MinSpeechDurationMs int `toml:"min_speech_duration_ms"`
}

// STTConfig holds transcription settings
type STTConfig struct {
	Backend        string `toml:"backend"` // "vosk" or "whisper"
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// ProvidersConfig holds AI provider settings
type ProvidersConfig struct {
	Selected       string `toml:"selected"`
	Model          string `toml:"model"`
	OllamaURL      string `toml:"ollama_url"`
	OllamaModel    string `toml:"ollama_model"`
	OpenAIKey      string `toml:"openai_key"`
	OpenAIModel    string `toml:"openai_model"`
	AnthropicKey   string `toml:"anthropic_key"`
	AnthropicModel string `toml:"anthropic_model"`
	UseHosted      bool   `toml:"use_hosted"`
	HostedURL      string `toml:"hosted_url"`
	HostedKey      string `toml:"hosted_key"`
	DescriptorFile string `toml:"descriptor_file"`
}

// StoreConfig holds persistence settings
type StoreConfig struct {
	DatabasePath string `toml:"database_path"`
	SettingsPath string `toml:"settings_path"`
}

// UIConfig holds observer interface settings. TUI and tray are on unless
// explicitly disabled; the hotkey is opt-in.
type UIConfig struct {
	TUI    *bool `toml:"tui"`
	Tray   *bool `toml:"tray"`
	Hotkey bool  `toml:"hotkey"`
}

// TUIEnabled reports whether the observer interface should run
func (u UIConfig) TUIEnabled() bool {
	return u.TUI == nil || *u.TUI
}

// TrayEnabled reports whether the system tray should run in headless mode
func (u UIConfig) TrayEnabled() bool {
	return u.Tray == nil || *u.Tray
}

// Default returns the default configuration
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	return &cfg, nil
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	if env := os.Getenv("SUPERVISIA_CONFIG"); env != "" {
		return env
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "./config.toml"
	}
	return filepath.Join(configDir, "supervisia", "config.toml")
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.Language == "" {
		c.General.Language = "pt"
	}

	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.BufferSize == 0 {
		c.Audio.BufferSize = 512
	}

	if c.VAD.SilenceDurationMs == 0 {
		c.VAD.SilenceDurationMs = 1500
	}
	if c.VAD.MinSpeechDurationMs == 0 {
		c.VAD.MinSpeechDurationMs = 400
	}
	if c.VAD.Mode == 0 {
		c.VAD.Mode = 2
	}

	if c.STT.Backend == "" {
		c.STT.Backend = "vosk"
	}
	if c.STT.URL == "" {
		if c.STT.Backend == "whisper" {
			c.STT.URL = "http://localhost:8090"
		} else {
			c.STT.URL = "ws://localhost:2700"
		}
	}
	if c.STT.TimeoutSeconds == 0 {
		c.STT.TimeoutSeconds = 30
	}

	if c.Providers.OllamaURL == "" {
		c.Providers.OllamaURL = "http://localhost:11434"
	}
	if c.Providers.OllamaModel == "" {
		c.Providers.OllamaModel = "llama3.2"
	}

	if c.Store.DatabasePath == "" {
		c.Store.DatabasePath = defaultDatabasePath()
	}
}

func defaultDatabasePath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "./data/sessions.db"
	}
	return filepath.Join(configDir, "supervisia", "sessions.db")
}

// expandEnvVars expands environment variables in sensitive fields so keys can
// stay out of the config file.
func (c *Config) expandEnvVars() {
	c.Providers.OpenAIKey = os.ExpandEnv(c.Providers.OpenAIKey)
	c.Providers.AnthropicKey = os.ExpandEnv(c.Providers.AnthropicKey)
	c.Providers.HostedKey = os.ExpandEnv(c.Providers.HostedKey)
}
