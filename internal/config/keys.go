package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

// keySpec declares one config key: its display name, environment variable,
// type, and how to read/write it on a Config.
type keySpec struct {
	key     string
	env     string
	typ     keyType
	extract func(Config) any
	apply   func(*Config, any)
}

var specs = []keySpec{
	{
		key: "server.port", env: "RAGLET_PORT", typ: kInt,
		extract: func(c Config) any { return c.Server.Port },
		apply:   func(c *Config, v any) { c.Server.Port = v.(int) },
	},
	{
		key: "ollama.base_url", env: "RAGLET_OLLAMA_URL", typ: kString,
		extract: func(c Config) any { return c.Ollama.BaseURL },
		apply:   func(c *Config, v any) { c.Ollama.BaseURL = v.(string) },
	},
	{
		key: "ollama.chat_model", env: "RAGLET_CHAT_MODEL", typ: kString,
		extract: func(c Config) any { return c.Ollama.ChatModel },
		apply:   func(c *Config, v any) { c.Ollama.ChatModel = v.(string) },
	},
	{
		key: "ollama.embed_model", env: "RAGLET_EMBED_MODEL", typ: kString,
		extract: func(c Config) any { return c.Ollama.EmbedModel },
		apply:   func(c *Config, v any) { c.Ollama.EmbedModel = v.(string) },
	},
	{
		key: "storage.data_dir", env: "RAGLET_DATA_DIR", typ: kString,
		extract: func(c Config) any { return c.Storage.DataDir },
		apply:   func(c *Config, v any) { c.Storage.DataDir = v.(string) },
	},
	{
		key: "ingestion.docs_dir", env: "RAGLET_DOCS_DIR", typ: kString,
		extract: func(c Config) any { return c.Ingestion.DocsDir },
		apply:   func(c *Config, v any) { c.Ingestion.DocsDir = v.(string) },
	},
	{
		key: "ingestion.formats", env: "RAGLET_FORMATS", typ: kString,
		extract: func(c Config) any { return c.Ingestion.Formats },
		apply:   func(c *Config, v any) { c.Ingestion.Formats = v.(string) },
	},
	{
		key: "ingestion.batch_size", env: "RAGLET_BATCH_SIZE", typ: kInt,
		extract: func(c Config) any { return c.Ingestion.BatchSize },
		apply:   func(c *Config, v any) { c.Ingestion.BatchSize = v.(int) },
	},
	{
		key: "retrieval.top_k", env: "RAGLET_TOP_K", typ: kInt,
		extract: func(c Config) any { return c.Retrieval.TopK },
		apply:   func(c *Config, v any) { c.Retrieval.TopK = v.(int) },
	},
	{
		key: "log.level", env: "RAGLET_LOG_LEVEL", typ: kString,
		extract: func(c Config) any { return c.Log.Level },
		apply:   func(c *Config, v any) { c.Log.Level = v.(string) },
	},
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}

// KeyInfo describes a config key for display purposes.
type KeyInfo struct {
	Key    string
	EnvVar string
	Value  string
}

// ShowAll returns all config key/value pairs from the current config.
func ShowAll(cfg Config) []KeyInfo {
	var result []KeyInfo
	for _, s := range specs {
		result = append(result, KeyInfo{
			Key:    s.key,
			EnvVar: s.env,
			Value:  fmt.Sprintf("%v", s.extract(cfg)),
		})
	}
	return result
}
