// Package api exposes the HTTP and MCP surfaces of the server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/raglet/raglet/internal/answer"
	"github.com/raglet/raglet/internal/index"
	"github.com/raglet/raglet/internal/ollama"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Answerer is the orchestrator capability the chat endpoint calls.
type Answerer interface {
	Answer(ctx context.Context, question string, useRetrieval bool) (answer.Result, error)
}

// StatsSource exposes index introspection for the stats endpoint.
type StatsSource interface {
	Stats() index.Stats
}

// Deps holds the collaborators for the HTTP handler.
type Deps struct {
	Answerer         Answerer
	Stats            StatsSource
	TopK             int
	SupportedFormats []string
}

// NewHandler returns the HTTP handler for the chat and stats endpoints.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/chat", handleChat(deps))
	r.Get("/vector-stats", handleVectorStats(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type chatRequest struct {
	Message string `json:"message"`
	// UseRAG defaults to true when omitted; this is a retrieval server.
	UseRAG *bool `json:"useRAG"`
}

type chatResponse struct {
	Reply  string `json:"reply"`
	Source string `json:"source"`
}

func handleChat(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			httpError(w, http.StatusBadRequest, "message is required and must not be empty")
			return
		}

		useRAG := true
		if req.UseRAG != nil {
			useRAG = *req.UseRAG
		}

		result, err := deps.Answerer.Answer(r.Context(), req.Message, useRAG)
		if errors.Is(err, ollama.ErrUpstreamTimeout) {
			httpError(w, http.StatusGatewayTimeout, "model call timed out: %v", err)
			return
		}
		if err != nil {
			httpError(w, http.StatusBadGateway, "model call failed: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse{
			Reply:  result.Reply,
			Source: result.Strategy,
		})
	}
}

type vectorStatsResponse struct {
	TotalVectors     int      `json:"totalVectors"`
	Files            int      `json:"files"`
	TopK             int      `json:"topK"`
	SupportedFormats []string `json:"supportedFormats"`
}

func handleVectorStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := deps.Stats.Stats()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(vectorStatsResponse{
			TotalVectors:     stats.Records,
			Files:            stats.FileSources,
			TopK:             deps.TopK,
			SupportedFormats: deps.SupportedFormats,
		})
	}
}

func httpError(w http.ResponseWriter, code int, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": fmt.Sprintf(format, args...),
	})
}
