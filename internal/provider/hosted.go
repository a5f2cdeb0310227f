// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     provider
// Description: Provider-agnostic hosted completion endpoint
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

// HostedProvider talks to the hosted Supervisia API, which proxies to a
// managed model. It needs no provider descriptor: base URL and license key
// are enough.
type HostedProvider struct {
	baseURL    string
	licenseKey string
	httpClient *http.Client
}

// HostedConfig holds hosted API configuration
type HostedConfig struct {
	BaseURL        string
	LicenseKey     string
	TimeoutSeconds int
}

// DefaultHostedConfig returns default hosted API configuration
func DefaultHostedConfig() HostedConfig {
	return HostedConfig{
		BaseURL:        "https://api.supervisia.app",
		TimeoutSeconds: 120,
	}
}

// NewHostedProvider creates a new hosted API provider
func NewHostedProvider(cfg HostedConfig) *HostedProvider {
	def := DefaultHostedConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = def.TimeoutSeconds
	}
	return &HostedProvider{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		licenseKey: cfg.LicenseKey,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Name returns the provider name
func (p *HostedProvider) Name() string { return string(TypeHosted) }

type hostedRequest struct {
	System   string    `json:"system,omitempty"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type hostedChunk struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

func (p *HostedProvider) buildRequest(req *ChatRequest, stream bool) hostedRequest {
	return hostedRequest{
		System:   req.System,
		Messages: NormalizeMessages(req.Messages),
		Stream:   stream,
	}
}

func (p *HostedProvider) post(ctx context.Context, client *http.Client, payload hostedRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/v1/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.licenseKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.licenseKey)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("hosted API returned %d: %s", resp.StatusCode, string(respBody))
	}

	return resp, nil
}

// Chat performs a blocking chat completion
func (p *HostedProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	resp, err := p.post(ctx, p.httpClient, p.buildRequest(req, false))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var chunk hostedChunk
	if err := json.NewDecoder(resp.Body).Decode(&chunk); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &ChatResponse{
		Message: Message{Role: "assistant", Content: chunk.Text},
		Done:    true,
	}, nil
}

// ChatStream performs a streaming chat completion
func (p *HostedProvider) ChatStream(ctx context.Context, req *ChatRequest, onChunk func(chunk string, done bool)) error {
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

		var chunk hostedChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}

		if onChunk != nil && chunk.Text != "" {
			onChunk(chunk.Text, chunk.Done)
		}
		if chunk.Done {
			if onChunk != nil && chunk.Text == "" {
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

// ListModels returns the single managed model
func (p *HostedProvider) ListModels(ctx context.Context) ([]ModelInfo, error) {
	return []ModelInfo{{Name: "supervisia-hosted", Provider: p.Name()}}, nil
}

// HealthCheck checks the hosted API status endpoint
func (p *HostedProvider) HealthCheck(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", p.baseURL+"/v1/status", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if p.licenseKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.licenseKey)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hosted API unhealthy: status %d", resp.StatusCode)
	}
	return nil
}
