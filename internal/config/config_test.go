package config

import (
	"reflect"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 4100 {
		t.Errorf("Port = %d, want 4100", cfg.Server.Port)
	}
	if cfg.Ingestion.BatchSize != 5 {
		t.Errorf("BatchSize = %d, want 5", cfg.Ingestion.BatchSize)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("TopK = %d, want 5", cfg.Retrieval.TopK)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RAGLET_PORT", "9999")
	t.Setenv("RAGLET_CHAT_MODEL", "mistral-nemo")
	t.Setenv("RAGLET_TOP_K", "3")
	t.Setenv("RAGLET_DOCS_DIR", "/srv/kb")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Ollama.ChatModel != "mistral-nemo" {
		t.Errorf("ChatModel = %q, want mistral-nemo", cfg.Ollama.ChatModel)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("TopK = %d, want 3", cfg.Retrieval.TopK)
	}
	if cfg.Ingestion.DocsDir != "/srv/kb" {
		t.Errorf("DocsDir = %q, want /srv/kb", cfg.Ingestion.DocsDir)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("RAGLET_BATCH_SIZE", "lots")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ingestion.BatchSize != 5 {
		t.Errorf("BatchSize = %d, want default 5", cfg.Ingestion.BatchSize)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("RAGLET_PORT", "70000")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestExtensions(t *testing.T) {
	cfg := Config{Ingestion: IngestionConfig{Formats: " .TXT, md ,,.pdf"}}

	got := cfg.Extensions()
	want := map[string]bool{".txt": true, ".md": true, ".pdf": true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extensions() = %v, want %v", got, want)
	}
}

func TestSupportedFormats(t *testing.T) {
	cfg := Config{Ingestion: IngestionConfig{Formats: ".txt,.md"}}

	got := cfg.SupportedFormats()
	want := []string{".txt", ".md"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SupportedFormats() = %v, want %v", got, want)
	}
}

func TestShowAll(t *testing.T) {
	t.Setenv("RAGLET_PORT", "9200")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	keys := ShowAll(cfg)
	if len(keys) != len(specs) {
		t.Fatalf("ShowAll returned %d keys, want %d", len(keys), len(specs))
	}

	byKey := make(map[string]KeyInfo, len(keys))
	for _, k := range keys {
		byKey[k.Key] = k
	}

	port, ok := byKey["server.port"]
	if !ok {
		t.Fatal("server.port missing from ShowAll")
	}
	if port.Value != "9200" {
		t.Errorf("server.port value = %q, want %q", port.Value, "9200")
	}
	if port.EnvVar != "RAGLET_PORT" {
		t.Errorf("server.port env var = %q, want %q", port.EnvVar, "RAGLET_PORT")
	}

	if model, ok := byKey["ollama.chat_model"]; !ok || model.Value == "" {
		t.Errorf("ollama.chat_model = %+v, want a non-empty default", model)
	}
}
