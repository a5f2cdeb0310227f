// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     stt
// Description: Whisper HTTP transcription client
// License:     MIT
// ============================================================================

package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WhisperHTTP transcribes via a Whisper-compatible HTTP server
// (go-whisper, LocalAI, faster-whisper-server).
type WhisperHTTP struct {
	baseURL  string
	language string
	client   *http.Client
}

// NewWhisperHTTP creates a new Whisper HTTP client
func NewWhisperHTTP(cfg Config) (*WhisperHTTP, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8090"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &WhisperHTTP{
		baseURL:  baseURL,
		language: cfg.Language,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// Name returns the backend name
func (w *WhisperHTTP) Name() string {
	return "whisper"
}

// Transcribe converts audio samples to text via HTTP
func (w *WhisperHTTP) Transcribe(ctx context.Context, samples []float32, sampleRate int) (*Result, error) {
	start := time.Now()

	var buf bytes.Buffer
	if err := writeWAV(&buf, samples, sampleRate); err != nil {
		return nil, fmt.Errorf("failed to create WAV: %w", err)
	}

	url := fmt.Sprintf("%s/v1/audio/transcriptions", w.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "audio/wav")

	if w.language != "" {
		q := req.URL.Query()
		q.Add("language", w.language)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var response struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &Result{
		Text:     response.Text,
		Language: w.language,
		Duration: time.Since(start),
	}, nil
}

// HealthCheck verifies the server is reachable
func (w *WhisperHTTP) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", w.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("whisper server not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("whisper server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources
func (w *WhisperHTTP) Close() error {
	return nil
}
