package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/raglet/raglet/internal/answer"
	"github.com/raglet/raglet/internal/api"
	"github.com/raglet/raglet/internal/config"
	"github.com/raglet/raglet/internal/extract"
	"github.com/raglet/raglet/internal/index"
	"github.com/raglet/raglet/internal/ingest"
	"github.com/raglet/raglet/internal/ollama"
	"github.com/raglet/raglet/internal/splitter"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the raglet server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "raglet version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.Log.Level)})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Check Ollama readiness.
	client := ollama.New(cfg.Ollama.BaseURL)
	if err := ollama.EnsureReady(ctx, client, cfg.Ollama.ChatModel, cfg.Ollama.EmbedModel, os.Stderr); err != nil {
		return err
	}

	// Open storage.
	db, err := index.OpenDB(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	store := index.NewStore(db)
	embedder := ollama.NewEmbedder(client, cfg.Ollama.EmbedModel)
	ix := index.New(store, embedder)

	// Load a persisted index, or build one from the docs folder. An empty
	// docs folder is not fatal: the server answers without retrieval until
	// content appears via chat or reindex.
	loaded, err := ix.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading index: %w", err)
	}
	if loaded {
		slog.Info("index loaded from disk", "records", ix.Stats().Records)
	} else {
		if err := buildIndex(ctx, cfg, ix); err != nil {
			if !errors.Is(err, ingest.ErrEmptyKnowledgeBase) {
				return fmt.Errorf("building index: %w", err)
			}
			slog.Warn("no extractable documents found, starting without an index", "docsDir", cfg.Ingestion.DocsDir)
		}
	}

	// Build the answering pipeline and HTTP handler.
	strategies := answer.NewRegistry(client, cfg.Ollama.ChatModel)
	orch := answer.NewOrchestrator(ix, strategies, answer.Route, cfg.Retrieval.TopK)

	deps := api.Deps{
		Answerer:         orch,
		Stats:            ix,
		TopK:             cfg.Retrieval.TopK,
		SupportedFormats: cfg.SupportedFormats(),
	}
	handler := api.NewHandler(deps)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Start MCP server (stdio transport in a goroutine).
	stdioSrv := server.NewStdioServer(api.NewMCPServer(deps))
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "raglet listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout; drain pending index writes first.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	orch.Wait()
	return nil
}

// buildIndex runs the ingestion pipeline over the docs folder and builds
// the vector index from the result.
func buildIndex(ctx context.Context, cfg config.Config, ix *index.Index) error {
	for _, ext := range cfg.SupportedFormats() {
		if !extract.Supported(ext) {
			slog.Warn("configured format has no extractor, matching files will be skipped", "ext", ext)
		}
	}

	split := splitter.New(splitter.DefaultMaxChars, splitter.DefaultOverlap)
	pipe := ingest.New(split, cfg.Ingestion.BatchSize)

	started := time.Now()
	chunks, err := pipe.Run(ctx, cfg.Ingestion.DocsDir, cfg.Extensions())
	if err != nil {
		return err
	}

	slog.Info("documents split", "chunks", len(chunks), "elapsed", time.Since(started).Round(time.Millisecond))

	if err := ix.Build(ctx, chunks); err != nil {
		return err
	}
	slog.Info("index built", "records", ix.Stats().Records)
	return nil
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
