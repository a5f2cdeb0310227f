// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     provider
// Description: Provider manager (selection and lifecycle)
// License:     MIT
// ============================================================================

package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/supervisia/supervisia/pkg/logging"
)

// Manager holds the configured providers and resolves which one serves a
// completion request.
type Manager struct {
	mu        sync.RWMutex
	byName    map[string]Provider
	selected  string
	hosted    *HostedProvider
	useHosted bool
	logger    *logging.Logger
}

// ManagerConfig holds manager configuration
type ManagerConfig struct {
	// Ollama is always available as the local default.
	OllamaURL   string
	OllamaModel string

	// OpenAI / Anthropic are enabled when keys are present.
	OpenAIKey      string
	OpenAIModel    string
	AnthropicKey   string
	AnthropicModel string

	// Hosted API mode (provider-agnostic endpoint).
	UseHosted        bool
	HostedURL        string
	HostedLicenseKey string

	// Custom user-defined descriptors.
	Descriptors []Descriptor

	// Selected is the name of the provider to use by default ("" = ollama,
	// or the only configured one).
	Selected string
}

// NewManager creates a provider manager from config.
func NewManager(cfg ManagerConfig) *Manager {
	logger := logging.New("provider-manager")
	m := &Manager{
		byName:    make(map[string]Provider),
		logger:    logger,
		useHosted: cfg.UseHosted,
	}

	// Local Ollama needs no credentials; keep it registered always.
	ollama := NewOllamaProvider(OllamaConfig{BaseURL: cfg.OllamaURL, Model: cfg.OllamaModel})
	m.byName[ollama.Name()] = ollama

	if cfg.OpenAIKey != "" {
		p, err := NewOpenAIProvider(OpenAIConfig{APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel})
		if err != nil {
			logger.Warn("Failed to create OpenAI provider", "error", err)
		} else {
			m.byName[p.Name()] = p
			logger.Info("OpenAI provider initialized", "model", cfg.OpenAIModel)
		}
	}

	if cfg.AnthropicKey != "" {
		p, err := NewAnthropicProvider(AnthropicConfig{APIKey: cfg.AnthropicKey, Model: cfg.AnthropicModel})
		if err != nil {
			logger.Warn("Failed to create Anthropic provider", "error", err)
		} else {
			m.byName[p.Name()] = p
			logger.Info("Anthropic provider initialized", "model", cfg.AnthropicModel)
		}
	}

	for _, d := range cfg.Descriptors {
		p, err := d.Build()
		if err != nil {
			logger.Warn("Skipping provider descriptor", "id", d.ID, "error", err)
			continue
		}
		m.byName[d.ID] = p
		logger.Info("Custom provider initialized", "id", d.ID, "kind", d.Kind)
	}

	if cfg.UseHosted {
		m.hosted = NewHostedProvider(HostedConfig{BaseURL: cfg.HostedURL, LicenseKey: cfg.HostedLicenseKey})
		logger.Info("Hosted API mode enabled")
	}

	m.selected = cfg.Selected

	return m
}

// Resolve returns the provider that should serve the next completion. The
// hosted endpoint wins when hosted mode is on; otherwise the selected
// descriptor must exist.
func (m *Manager) Resolve() (Provider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.useHosted && m.hosted != nil {
		return m.hosted, nil
	}

	name := m.selected
	if name == "" {
		if len(m.byName) == 0 {
			return nil, fmt.Errorf("no provider configured")
		}
		name = string(TypeOllama)
	}

	p, ok := m.byName[name]
	if !ok {
		return nil, fmt.Errorf("provider not found: %s", name)
	}
	return p, nil
}

// Get returns a provider by name.
func (m *Manager) Get(name string) (Provider, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.byName[name]
	return p, ok
}

// Select changes the default provider.
func (m *Manager) Select(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[name]; !ok {
		return fmt.Errorf("provider not found: %s", name)
	}
	m.selected = name
	return nil
}

// Names returns the registered provider names.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.byName))
	for name := range m.byName {
		names = append(names, name)
	}
	return names
}

// CheckHealth probes every registered provider and reports reachability by
// name. The hosted endpoint is probed too when hosted mode is on.
func (m *Manager) CheckHealth(ctx context.Context) map[string]error {
	m.mu.RLock()
	providers := make(map[string]Provider, len(m.byName)+1)
	for name, p := range m.byName {
		providers[name] = p
	}
	if m.useHosted && m.hosted != nil {
		providers[m.hosted.Name()] = m.hosted
	}
	m.mu.RUnlock()

	results := make(map[string]error, len(providers))
	for name, p := range providers {
		results[name] = p.HealthCheck(ctx)
	}
	return results
}

// ListAllModels collects models from every registered provider. Failures are
// logged and skipped so one offline provider doesn't hide the rest.
func (m *Manager) ListAllModels(ctx context.Context) []ModelInfo {
	m.mu.RLock()
	providers := make([]Provider, 0, len(m.byName))
	for _, p := range m.byName {
		providers = append(providers, p)
	}
	m.mu.RUnlock()

	var all []ModelInfo
	for _, p := range providers {
		models, err := p.ListModels(ctx)
		if err != nil {
			m.logger.Debug("Model listing failed", "provider", p.Name(), "error", err)
			continue
		}
		all = append(all, models...)
	}
	return all
}
