// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     provider
// Description: Anthropic messages provider (SSE streaming)
// License:     MIT
// ============================================================================

package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AnthropicProvider talks to the Anthropic messages API.
type AnthropicProvider struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// AnthropicConfig holds Anthropic provider configuration
type AnthropicConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	MaxTokens      int
	TimeoutSeconds int
}

// DefaultAnthropicConfig returns default Anthropic configuration
func DefaultAnthropicConfig() AnthropicConfig {
	return AnthropicConfig{
		BaseURL:        "https://api.anthropic.com/v1",
		Model:          "claude-sonnet-4-20250514",
		MaxTokens:      4096,
		TimeoutSeconds: 120,
	}
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(cfg AnthropicConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	def := DefaultAnthropicConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = def.TimeoutSeconds
	}
	return &AnthropicProvider{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string { return string(TypeAnthropic) }

type anthropicRequest struct {
	Model     string    `json:"model"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
	Stream    bool      `json:"stream,omitempty"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicStreamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

// mergeUserRuns collapses consecutive same-role messages; the messages API
// requires strictly alternating user/assistant turns.
func mergeUserRuns(msgs []Message) []Message {
	var out []Message
	for _, m := range msgs {
		if n := len(out); n > 0 && out[n-1].Role == m.Role {
			out[n-1].Content += "\n" + m.Content
			continue
		}
		out = append(out, m)
	}
	return out
}

func (p *AnthropicProvider) buildRequest(req *ChatRequest, stream bool) anthropicRequest {
	model := req.Model
	if model == "" {
		model = p.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}
	return anthropicRequest{
		Model:     model,
		System:    req.System,
		Messages:  mergeUserRuns(NormalizeMessages(req.Messages)),
		MaxTokens: maxTokens,
		Stream:    stream,
	}
}

func (p *AnthropicProvider) post(ctx context.Context, client *http.Client, payload anthropicRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("anthropic returned %d: %s", resp.StatusCode, string(respBody))
	}

	return resp, nil
}

// Chat performs a blocking chat completion
func (p *AnthropicProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	resp, err := p.post(ctx, p.httpClient, p.buildRequest(req, false))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var msgResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var text strings.Builder
	for _, c := range msgResp.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}

	return &ChatResponse{
		Message: Message{Role: "assistant", Content: text.String()},
		Model:   msgResp.Model,
		Done:    true,
	}, nil
}

// ChatStream performs a streaming chat completion over SSE
func (p *AnthropicProvider) ChatStream(ctx context.Context, req *ChatRequest, onChunk func(chunk string, done bool)) error {
	resp, err := p.post(ctx, &http.Client{}, p.buildRequest(req, true))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		var event anthropicStreamEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			continue
		}

		switch event.Type {
		case "content_block_delta":
			if onChunk != nil && event.Delta.Text != "" {
				onChunk(event.Delta.Text, false)
			}
		case "message_stop":
			if onChunk != nil {
				onChunk("", true)
			}
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("stream read failed: %w", err)
	}
	return nil
}

// ListModels returns the configured model; Anthropic has no public listing
// endpoint compatible with the others.
func (p *AnthropicProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	return []ModelInfo{{Name: p.model, Provider: p.Name()}}, nil
}

// HealthCheck checks if the API accepts requests
func (p *AnthropicProvider) HealthCheck(ctx context.Context) error {
	req := &ChatRequest{
		Messages:  []Message{{Role: "user", Content: "ping"}},
		MaxTokens: 1,
	}
	_, err := p.Chat(ctx, req)
	return err
}
