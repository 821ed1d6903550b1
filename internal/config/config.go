package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	Server    ServerConfig
	Ollama    OllamaConfig
	Storage   StorageConfig
	Ingestion IngestionConfig
	Retrieval RetrievalConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port int
}

type OllamaConfig struct {
	BaseURL    string
	ChatModel  string
	EmbedModel string
}

type StorageConfig struct {
	DataDir string
}

type IngestionConfig struct {
	DocsDir string
	// Formats is the comma-separated allow-list of file extensions,
	// e.g. ".txt,.md,.pdf". Leading dots are optional.
	Formats   string
	BatchSize int
}

type RetrievalConfig struct {
	TopK int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4100,
		},
		Ollama: OllamaConfig{
			BaseURL:    "http://localhost:11434",
			ChatModel:  "llama3.2",
			EmbedModel: "nomic-embed-text",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Ingestion: IngestionConfig{
			DocsDir:   "./docs",
			Formats:   ".txt,.md,.pdf,.docx,.csv,.html",
			BatchSize: 5,
		},
		Retrieval: RetrievalConfig{
			TopK: 5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults overridden by RAGLET_*
// environment variables. It never reads config files: the whole surface
// is environment-sourced so the server behaves the same under systemd,
// launchd, and plain shells.
func Load() (Config, error) {
	cfg := defaults()
	applyEnvOverrides(&cfg)

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Server.Port)
	}
	if cfg.Ingestion.BatchSize <= 0 {
		cfg.Ingestion.BatchSize = defaults().Ingestion.BatchSize
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = defaults().Retrieval.TopK
	}

	return cfg, nil
}

// Extensions returns the configured format allow-list as a lowercase set
// keyed by extension including the leading dot.
func (c Config) Extensions() map[string]bool {
	exts := make(map[string]bool)
	for _, raw := range strings.Split(c.Ingestion.Formats, ",") {
		e := strings.ToLower(strings.TrimSpace(raw))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	return exts
}

// SupportedFormats returns the allow-list as a sorted-by-input slice for
// display and stats purposes.
func (c Config) SupportedFormats() []string {
	var formats []string
	for _, raw := range strings.Split(c.Ingestion.Formats, ",") {
		e := strings.ToLower(strings.TrimSpace(raw))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		formats = append(formats, e)
	}
	return formats
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".raglet"
	}
	return filepath.Join(home, ".raglet")
}
