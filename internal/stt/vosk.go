// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     stt
// Description: Vosk WebSocket transcription client
// License:     MIT
// ============================================================================

package stt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// voskChunkBytes is the PCM payload size per WebSocket message (0.25s at 16kHz)
const voskChunkBytes = 8000

// VoskClient transcribes via a Vosk WebSocket server. Each utterance uses its
// own connection; the server finalizes on EOF, which keeps utterances isolated.
type VoskClient struct {
	serverURL string
	language  string
	timeout   time.Duration
	dialer    *websocket.Dialer
}

// NewVoskClient creates a new Vosk WebSocket client
func NewVoskClient(cfg Config) (*VoskClient, error) {
	serverURL := cfg.BaseURL
	if serverURL == "" {
		serverURL = "ws://localhost:2700"
	}
	if !strings.HasPrefix(serverURL, "ws://") && !strings.HasPrefix(serverURL, "wss://") {
		return nil, fmt.Errorf("invalid Vosk server URL: %s", serverURL)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &VoskClient{
		serverURL: serverURL,
		language:  cfg.Language,
		timeout:   timeout,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}, nil
}

// Name returns the backend name
func (v *VoskClient) Name() string {
	return "vosk"
}

// voskResult is the server's JSON reply
type voskResult struct {
	Text    string `json:"text"`
	Partial string `json:"partial"`
}

// Transcribe sends PCM audio over a fresh WebSocket connection and collects
// the finalized text.
func (v *VoskClient) Transcribe(ctx context.Context, samples []float32, sampleRate int) (*Result, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	conn, _, err := v.dialer.DialContext(ctx, v.serverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Vosk server: %w", err)
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if ok {
		conn.SetReadDeadline(deadline)
		conn.SetWriteDeadline(deadline)
	}

	config := map[string]interface{}{
		"config": map[string]interface{}{
			"sample_rate": sampleRate,
		},
	}
	if err := conn.WriteJSON(config); err != nil {
		return nil, fmt.Errorf("failed to send config: %w", err)
	}

	pcm := pcm16ToBytes(float32ToPCM16(samples))

	var pieces []string
	for offset := 0; offset < len(pcm); offset += voskChunkBytes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := offset + voskChunkBytes
		if end > len(pcm) {
			end = len(pcm)
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, pcm[offset:end]); err != nil {
			return nil, fmt.Errorf("failed to send audio: %w", err)
		}

		// The server replies per chunk with either a partial or a finalized
		// segment; only finalized text is kept.
		var res voskResult
		if err := conn.ReadJSON(&res); err != nil {
			return nil, fmt.Errorf("failed to read result: %w", err)
		}
		if res.Text != "" {
			pieces = append(pieces, res.Text)
		}
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"eof" : 1}`)); err != nil {
		return nil, fmt.Errorf("failed to send EOF: %w", err)
	}

	var final voskResult
	if err := conn.ReadJSON(&final); err != nil {
		return nil, fmt.Errorf("failed to read final result: %w", err)
	}
	if final.Text != "" {
		pieces = append(pieces, final.Text)
	}

	return &Result{
		Text:     strings.TrimSpace(strings.Join(pieces, " ")),
		Language: v.language,
		Duration: time.Since(start),
	}, nil
}

// HealthCheck verifies the Vosk server accepts connections
func (v *VoskClient) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, _, err := v.dialer.DialContext(ctx, v.serverURL, nil)
	if err != nil {
		return fmt.Errorf("vosk server not reachable: %w", err)
	}
	conn.Close()
	return nil
}

// Close releases resources
func (v *VoskClient) Close() error {
	return nil
}
