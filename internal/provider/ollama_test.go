// ============================================================================
// Supervisia - Clinical Session Supervision Engine
// ============================================================================
//
// Package:     provider
// Description: Tests for the Ollama streaming client
// License:     MIT
// ============================================================================

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaChatStream(t *testing.T) {
	chunks := []string{"Olá", ", ", "tudo bem?"}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}

		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if !req.Stream {
			t.Error("expected stream=true")
		}
		if req.Model != "llama3.2" {
			t.Errorf("model = %s", req.Model)
		}
		if len(req.Messages) == 0 || req.Messages[0].Role != "system" {
			t.Error("expected system message first")
		}

		w.Header().Set("Content-Type", "application/x-ndjson")
		for _, c := range chunks {
			line, _ := json.Marshal(ollamaChatResponse{
				Model:   req.Model,
				Message: Message{Role: "assistant", Content: c},
			})
			fmt.Fprintf(w, "%s\n", line)
		}
		final, _ := json.Marshal(ollamaChatResponse{Model: req.Model, Done: true})
		fmt.Fprintf(w, "%s\n", final)
	}))
	defer server.Close()

	p := NewOllamaProvider(OllamaConfig{BaseURL: server.URL, Model: "llama3.2"})

	var got strings.Builder
	doneSeen := false
	err := p.ChatStream(context.Background(), &ChatRequest{
		System:   "seja breve",
		Messages: []Message{{Role: "terapeuta", Content: "oi"}},
	}, func(chunk string, done bool) {
		got.WriteString(chunk)
		if done {
			doneSeen = true
		}
	})
	if err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}

	if got.String() != "Olá, tudo bem?" {
		t.Errorf("streamed content = %q", got.String())
	}
	if !doneSeen {
		t.Error("done flag never delivered")
	}
}

func TestOllamaChatStreamCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		line, _ := json.Marshal(ollamaChatResponse{Message: Message{Content: "primeiro "}})
		fmt.Fprintf(w, "%s\n", line)
		flusher.Flush()
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	p := NewOllamaProvider(OllamaConfig{BaseURL: server.URL, Model: "llama3.2"})

	errCh := make(chan error, 1)
	go func() {
		errCh <- p.ChatStream(ctx, &ChatRequest{
			Messages: []Message{{Role: "user", Content: "oi"}},
		}, func(chunk string, done bool) {
			if chunk != "" {
				cancel()
			}
		})
	}()

	err := <-errCh
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestOllamaChatNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	p := NewOllamaProvider(OllamaConfig{BaseURL: server.URL, Model: "missing"})
	_, err := p.Chat(context.Background(), &ChatRequest{
		Messages: []Message{{Role: "user", Content: "oi"}},
	})
	if err == nil {
		t.Fatal("expected error on 404")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error should carry status code: %v", err)
	}
}
