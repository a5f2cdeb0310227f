// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     provider
// Description: User-defined provider descriptors (YAML)
// License:     MIT
// ============================================================================

package provider

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Descriptor defines a user-configured provider endpoint. OpenAI-compatible
// endpoints cover most self-hosted gateways (vLLM, LiteLLM, OpenRouter).
type Descriptor struct {
	ID      string `yaml:"id"`
	Kind    string `yaml:"kind"` // "openai-compatible", "anthropic", "ollama"
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

type descriptorFile struct {
	Providers []Descriptor `yaml:"providers"`
}

// LoadDescriptors reads provider descriptors from a YAML file. A missing file
// is not an error; an unreadable one is.
func LoadDescriptors(path string) ([]Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read providers file: %w", err)
	}

	var file descriptorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse providers file: %w", err)
	}

	for i, d := range file.Providers {
		if d.ID == "" {
			return nil, fmt.Errorf("provider %d: id is required", i)
		}
		if d.Kind == "" {
			file.Providers[i].Kind = "openai-compatible"
		}
	}

	return file.Providers, nil
}

// Build constructs a Provider from a descriptor.
func (d Descriptor) Build() (Provider, error) {
	switch d.Kind {
	case "openai-compatible", "openai":
		return NewOpenAIProvider(OpenAIConfig{
			Name:    d.ID,
			BaseURL: d.BaseURL,
			APIKey:  d.APIKey,
			Model:   d.Model,
		})
	case "anthropic":
		return NewAnthropicProvider(AnthropicConfig{
			BaseURL: d.BaseURL,
			APIKey:  d.APIKey,
			Model:   d.Model,
		})
	case "ollama":
		return NewOllamaProvider(OllamaConfig{
			BaseURL: d.BaseURL,
			Model:   d.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider kind: %s", d.Kind)
	}
}
