package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// fakeOllama builds a test server that mimics the subset of the Ollama API
// the client uses.
func fakeOllama(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestChat(t *testing.T) {
	c := fakeOllama(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q, want /api/chat", r.URL.Path)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Model != "llama3.2" {
			t.Errorf("model = %q, want llama3.2", req.Model)
		}
		if req.Stream {
			t.Error("stream = true, want false")
		}
		json.NewEncoder(w).Encode(chatResponse{
			Message: Message{Role: "assistant", Content: "hello there"},
		})
	})

	got, err := c.Chat(context.Background(), "llama3.2", []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if got != "hello there" {
		t.Errorf("Chat = %q, want %q", got, "hello there")
	}
}

func TestChat_UpstreamError(t *testing.T) {
	c := fakeOllama(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model blew up", http.StatusInternalServerError)
	})

	if _, err := c.Chat(context.Background(), "llama3.2", nil); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestChat_Timeout(t *testing.T) {
	c := fakeOllama(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	c.chatTimeout = 50 * time.Millisecond

	_, err := c.Chat(context.Background(), "llama3.2", nil)
	if !errors.Is(err, ErrUpstreamTimeout) {
		t.Fatalf("err = %v, want ErrUpstreamTimeout", err)
	}
}

func TestEmbed(t *testing.T) {
	c := fakeOllama(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("path = %q, want /api/embed", r.URL.Path)
		}
		json.NewEncoder(w).Encode(embedResponse{
			Embeddings: [][]float32{{0.1, 0.2, 0.3}},
		})
	})

	vec, err := c.Embed(context.Background(), "nomic-embed-text", "some text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("len(vec) = %d, want 3", len(vec))
	}
}

func TestEmbed_EmptyResponse(t *testing.T) {
	c := fakeOllama(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{})
	})

	if _, err := c.Embed(context.Background(), "nomic-embed-text", "text"); err == nil {
		t.Fatal("expected error on empty embeddings array")
	}
}

func TestEmbed_Timeout(t *testing.T) {
	c := fakeOllama(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	c.embedTimeout = 50 * time.Millisecond

	_, err := c.Embed(context.Background(), "nomic-embed-text", "text")
	if !errors.Is(err, ErrUpstreamTimeout) {
		t.Fatalf("err = %v, want ErrUpstreamTimeout", err)
	}
}

func TestHasModel(t *testing.T) {
	c := fakeOllama(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tagsResponse{Models: []modelEntry{
			{Name: "llama3.2:latest"},
			{Name: "nomic-embed-text"},
		}})
	})

	tests := []struct {
		name string
		want bool
	}{
		{"llama3.2", true},
		{"nomic-embed-text", true},
		{"mistral", false},
	}
	for _, tt := range tests {
		if got := c.HasModel(context.Background(), tt.name); got != tt.want {
			t.Errorf("HasModel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsRunning(t *testing.T) {
	c := fakeOllama(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if !c.IsRunning(context.Background()) {
		t.Error("IsRunning = false, want true")
	}

	down := New("http://127.0.0.1:1")
	if down.IsRunning(context.Background()) {
		t.Error("IsRunning = true for unreachable server")
	}
}
