package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/raglet/raglet/internal/config"
	"github.com/raglet/raglet/internal/index"
	"github.com/raglet/raglet/internal/ingest"
	"github.com/raglet/raglet/internal/ollama"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show raglet system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the vector index from the docs folder",
	Long: `Rebuild the vector index from the docs folder.

Discards all stored vectors, including chat-appended content, and
re-ingests every supported document. Run while the server is stopped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reindex()
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration and the env var for each key",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s  (%s)\n", colorize(colorBold, k.Key), k.Value, k.EnvVar)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	running := false
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			running = true
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	ollamaResp, err := client.Get(cfg.Ollama.BaseURL + "/api/version")
	if err != nil {
		printStatus("Ollama", "not running")
	} else {
		ollamaResp.Body.Close()
		printStatus("Ollama", "running at %s", cfg.Ollama.BaseURL)
	}

	printStatus("Chat model", "%s", cfg.Ollama.ChatModel)
	printStatus("Embed model", "%s", cfg.Ollama.EmbedModel)

	if running {
		statsResp, err := client.Get(serverURL + "/vector-stats")
		if err == nil {
			var stats struct {
				TotalVectors int `json:"totalVectors"`
				Files        int `json:"files"`
			}
			if json.NewDecoder(statsResp.Body).Decode(&stats) == nil {
				printStatus("Vectors", "%d from %d files", stats.TotalVectors, stats.Files)
			}
			statsResp.Body.Close()
		}
	}

	printStatus("Docs dir", "%s", cfg.Ingestion.DocsDir)
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func reindex() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := ollama.New(cfg.Ollama.BaseURL)
	if err := ollama.EnsureReady(ctx, client, cfg.Ollama.ChatModel, cfg.Ollama.EmbedModel, os.Stderr); err != nil {
		return err
	}

	db, err := index.OpenDB(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer db.Close()

	store := index.NewStore(db)
	if err := store.Clear(); err != nil {
		return err
	}

	ix := index.New(store, ollama.NewEmbedder(client, cfg.Ollama.EmbedModel))
	if err := buildIndex(ctx, cfg, ix); err != nil {
		if !errors.Is(err, ingest.ErrEmptyKnowledgeBase) {
			return fmt.Errorf("rebuilding index: %w", err)
		}
		printWarning("No extractable documents in %s, index is now empty", cfg.Ingestion.DocsDir)
		return nil
	}

	printSuccess("Reindexed %d vectors from %s", ix.Stats().Records, cfg.Ingestion.DocsDir)
	return nil
}
