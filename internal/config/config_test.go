// ABOUTME: Tests for centralized configuration system
// ABOUTME: Verifies defaults, YAML file loading, environment overrides and validation
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "ASSISTANT_CHAT_MODEL", "ASSISTANT_EMBEDDING_MODEL",
	"OPENAI_TIMEOUT", "OPENAI_MAX_RETRIES", "OPENAI_RETRY_DELAY", "OPENAI_REQUESTS_PER_SECOND",
	"ASSISTANT_CHAT_TOKEN_LIMIT", "ASSISTANT_EMBEDDING_TOKEN_LIMIT", "ASSISTANT_EMBEDDING_DIM",
	"ASSISTANT_STORE_CAPACITY", "ASSISTANT_TOP_K", "ASSISTANT_EMBEDDING_CACHE_SIZE",
	"ASSISTANT_POPULATE_CONCURRENCY", "ASSISTANT_AGENT", "ASSISTANT_SYSTEM_PROMPT", "CATALOG_URL",
	"PRODUCT_DATABASE_FILE", "ASSISTANT_SAVE_TRANSCRIPTS", "ASSISTANT_HTTP_ADDR", "ASSISTANT_DEBUG",
}

// clearEnv blanks every key the loader reads; blank values count as unset
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ChatModel != "gpt-4o-mini" {
		t.Errorf("ChatModel = %s, want gpt-4o-mini", cfg.ChatModel)
	}
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("EmbeddingModel = %s, want text-embedding-3-small", cfg.EmbeddingModel)
	}
	if cfg.EmbeddingDim != 100 || cfg.StoreCapacity != 100 {
		t.Errorf("EmbeddingDim/StoreCapacity = %d/%d, want 100/100", cfg.EmbeddingDim, cfg.StoreCapacity)
	}
	if cfg.TopK != 2 {
		t.Errorf("TopK = %d, want 2", cfg.TopK)
	}
	if cfg.ChatTokenLimit != 1000 || cfg.EmbeddingTokenLimit != 1000 {
		t.Errorf("token limits = %d/%d, want 1000/1000", cfg.ChatTokenLimit, cfg.EmbeddingTokenLimit)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.RetryDelay != 2*time.Second {
		t.Errorf("RetryDelay = %v, want 2s", cfg.RetryDelay)
	}
	if cfg.Agent != AgentRAG {
		t.Errorf("Agent = %s, want rag", cfg.Agent)
	}
	if cfg.SystemPrompt != "You are an assistant for an e-commerce web site." {
		t.Errorf("SystemPrompt = %q", cfg.SystemPrompt)
	}
	if cfg.CatalogURL != "https://fakestoreapi.com/products" {
		t.Errorf("CatalogURL = %s", cfg.CatalogURL)
	}
	if filepath.Base(cfg.DatabasePath) != "products.db" {
		t.Errorf("DatabasePath = %s, want .../products.db", cfg.DatabasePath)
	}
	if !cfg.SaveTranscripts {
		t.Error("SaveTranscripts = false, want true")
	}
	if cfg.HTTPAddr != "localhost:8080" {
		t.Errorf("HTTPAddr = %s, want localhost:8080", cfg.HTTPAddr)
	}
	if cfg.Debug {
		t.Error("Debug = true, want false")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:9999/v1")
	t.Setenv("ASSISTANT_CHAT_MODEL", "gpt-4o")
	t.Setenv("OPENAI_TIMEOUT", "10s")
	t.Setenv("OPENAI_MAX_RETRIES", "5")
	t.Setenv("ASSISTANT_EMBEDDING_DIM", "256")
	t.Setenv("ASSISTANT_TOP_K", "4")
	t.Setenv("ASSISTANT_AGENT", "simple")
	t.Setenv("PRODUCT_DATABASE_FILE", "/tmp/products.db")
	t.Setenv("ASSISTANT_DEBUG", "1")
	t.Setenv("ASSISTANT_SAVE_TRANSCRIPTS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.OpenAIKey != "test-key" {
		t.Errorf("OpenAIKey = %s, want test-key", cfg.OpenAIKey)
	}
	if cfg.OpenAIBaseURL != "http://localhost:9999/v1" {
		t.Errorf("OpenAIBaseURL = %s", cfg.OpenAIBaseURL)
	}
	if cfg.ChatModel != "gpt-4o" {
		t.Errorf("ChatModel = %s, want gpt-4o", cfg.ChatModel)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", cfg.MaxRetries)
	}
	if cfg.EmbeddingDim != 256 {
		t.Errorf("EmbeddingDim = %d, want 256", cfg.EmbeddingDim)
	}
	if cfg.TopK != 4 {
		t.Errorf("TopK = %d, want 4", cfg.TopK)
	}
	if cfg.Agent != AgentSimple {
		t.Errorf("Agent = %s, want simple", cfg.Agent)
	}
	if cfg.DatabasePath != "/tmp/products.db" {
		t.Errorf("DatabasePath = %s", cfg.DatabasePath)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
	if cfg.SaveTranscripts {
		t.Error("SaveTranscripts = true, want false")
	}
}

func TestLoadFile_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "shopassist.yaml")
	content := `
chat_model: gpt-4.1-mini
top_k: 3
store_capacity: 50
retry_delay: 500ms
system_prompt: "You help customers find clothing."
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("ASSISTANT_TOP_K", "5")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.ChatModel != "gpt-4.1-mini" {
		t.Errorf("ChatModel = %s, want value from file", cfg.ChatModel)
	}
	if cfg.StoreCapacity != 50 {
		t.Errorf("StoreCapacity = %d, want 50", cfg.StoreCapacity)
	}
	if cfg.RetryDelay != 500*time.Millisecond {
		t.Errorf("RetryDelay = %v, want 500ms", cfg.RetryDelay)
	}
	if cfg.SystemPrompt != "You help customers find clothing." {
		t.Errorf("SystemPrompt = %q", cfg.SystemPrompt)
	}
	if cfg.TopK != 5 {
		t.Errorf("TopK = %d, want env override 5", cfg.TopK)
	}
	if cfg.EmbeddingDim != 100 {
		t.Errorf("EmbeddingDim = %d, want default 100", cfg.EmbeddingDim)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	clearEnv(t)

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile() should fail for a missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	_ = os.WriteFile(bad, []byte("top_k: [not an int"), 0600)
	if _, err := LoadFile(bad); err == nil {
		t.Error("LoadFile() should fail for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero dim", func(c *Config) { c.EmbeddingDim = 0 }},
		{"zero capacity", func(c *Config) { c.StoreCapacity = 0 }},
		{"negative k", func(c *Config) { c.TopK = -1 }},
		{"zero chat limit", func(c *Config) { c.ChatTokenLimit = 0 }},
		{"zero embedding limit", func(c *Config) { c.EmbeddingTokenLimit = 0 }},
		{"too many retries", func(c *Config) { c.MaxRetries = 15 }},
		{"negative retries", func(c *Config) { c.MaxRetries = -1 }},
		{"negative rate", func(c *Config) { c.RequestsPerSecond = -2 }},
		{"unknown agent", func(c *Config) { c.Agent = "wizard" }},
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestRequireOpenAI(t *testing.T) {
	cfg := Default()
	if cfg.RequireOpenAI() == nil {
		t.Error("RequireOpenAI() should fail without a key")
	}
	cfg.OpenAIKey = "sk-test"
	if err := cfg.RequireOpenAI(); err != nil {
		t.Errorf("RequireOpenAI() error = %v", err)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		defaultVal bool
		want       bool
	}{
		{"empty uses default true", "", true, true},
		{"empty uses default false", "", false, false},
		{"true", "true", false, true},
		{"1", "1", false, true},
		{"false", "false", true, false},
		{"0", "0", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			got := getEnvBool("TEST_BOOL", tt.defaultVal)
			if got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("TEST_INT", "seven")
	if got := getEnvInt("TEST_INT", 7); got != 7 {
		t.Errorf("getEnvInt() = %d, want 7", got)
	}
}
