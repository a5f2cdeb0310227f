// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     stt
// Description: Tests for the Vosk WebSocket client
// License:     MIT
// ============================================================================

package stt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// fakeVoskServer mimics the vosk-server protocol: a config message, binary
// PCM chunks answered with partials, and a final result after EOF.
func fakeVoskServer(t *testing.T, finalText string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		var config struct {
			Config struct {
				SampleRate int `json:"sample_rate"`
			} `json:"config"`
		}
		if err := conn.ReadJSON(&config); err != nil {
			t.Errorf("config read failed: %v", err)
			return
		}
		if config.Config.SampleRate != 16000 {
			t.Errorf("sample rate = %d", config.Config.SampleRate)
		}

		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if msgType == websocket.BinaryMessage {
				if err := conn.WriteJSON(map[string]string{"partial": "..."}); err != nil {
					return
				}
				continue
			}
			if strings.Contains(string(data), "eof") {
				conn.WriteJSON(map[string]string{"text": finalText})
				return
			}
		}
	}))
}

func TestVoskTranscribe(t *testing.T) {
	server := fakeVoskServer(t, "eu entendo você")
	defer server.Close()

	client, err := NewVoskClient(Config{
		BaseURL:  "ws" + strings.TrimPrefix(server.URL, "http"),
		Language: "pt",
	})
	if err != nil {
		t.Fatalf("NewVoskClient failed: %v", err)
	}

	samples := make([]float32, 16000) // 1s of silence-shaped audio
	result, err := client.Transcribe(context.Background(), samples, 16000)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}

	if result.Text != "eu entendo você" {
		t.Errorf("text = %q", result.Text)
	}
	if result.Language != "pt" {
		t.Errorf("language = %s", result.Language)
	}
}

func TestVoskRejectsHTTPURL(t *testing.T) {
	if _, err := NewVoskClient(Config{BaseURL: "http://localhost:2700"}); err == nil {
		t.Fatal("http URL should be rejected")
	}
}

func TestVoskHealthCheckUnreachable(t *testing.T) {
	client, err := NewVoskClient(Config{BaseURL: "ws://127.0.0.1:1"})
	if err != nil {
		t.Fatal(err)
	}
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("unreachable server should fail health check")
	}
}

func TestNewSelectsBackend(t *testing.T) {
	tr, err := New(Config{Backend: "whisper", BaseURL: "http://localhost:8090"})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Name() != "whisper" {
		t.Errorf("backend = %s", tr.Name())
	}

	tr, err = New(Config{Backend: "vosk", BaseURL: "ws://localhost:2700"})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Name() != "vosk" {
		t.Errorf("backend = %s", tr.Name())
	}
}
