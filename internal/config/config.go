// ABOUTME: Centralized configuration for the shopping assistant
// ABOUTME: Defaults, then an optional YAML file, then environment variables, then validation
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/harper/shopassist/internal/storage/sqlite"
	"gopkg.in/yaml.v3"
)

// Agent kinds
const (
	AgentRAG    = "rag"
	AgentSimple = "simple"
)

// Config holds all configuration for the assistant
type Config struct {
	// OpenAI settings
	OpenAIKey         string        `yaml:"openai_api_key"`
	OpenAIBaseURL     string        `yaml:"openai_base_url"`
	ChatModel         string        `yaml:"chat_model"`
	EmbeddingModel    string        `yaml:"embedding_model"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`

	// Token guards
	ChatTokenLimit      int `yaml:"chat_token_limit"`
	EmbeddingTokenLimit int `yaml:"embedding_token_limit"`

	// Retrieval settings
	EmbeddingDim        int    `yaml:"embedding_dim"`
	StoreCapacity       int    `yaml:"store_capacity"`
	TopK                int    `yaml:"top_k"`
	EmbeddingCacheSize  int    `yaml:"embedding_cache_size"`
	PopulateConcurrency int    `yaml:"populate_concurrency"`
	Agent               string `yaml:"agent"`
	SystemPrompt        string `yaml:"system_prompt"`

	// Catalog and persistence
	CatalogURL      string `yaml:"catalog_url"`
	DatabasePath    string `yaml:"database_path"`
	SaveTranscripts bool   `yaml:"save_transcripts"`

	// Hosts
	HTTPAddr string `yaml:"http_addr"`
	Debug    bool   `yaml:"debug"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		ChatModel:           "gpt-4o-mini",
		EmbeddingModel:      "text-embedding-3-small",
		Timeout:             30 * time.Second,
		MaxRetries:          3,
		RetryDelay:          2 * time.Second,
		ChatTokenLimit:      1000,
		EmbeddingTokenLimit: 1000,
		EmbeddingDim:        100,
		StoreCapacity:       100,
		TopK:                2,
		EmbeddingCacheSize:  256,
		PopulateConcurrency: 4,
		Agent:               AgentRAG,
		SystemPrompt:        "You are an assistant for an e-commerce web site.",
		CatalogURL:          "https://fakestoreapi.com/products",
		DatabasePath:        sqlite.DefaultDBPath(),
		SaveTranscripts:     true,
		HTTPAddr:            "localhost:8080",
	}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads path as YAML over the defaults, then applies environment overrides.
// An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	c.OpenAIKey = getEnv("OPENAI_API_KEY", c.OpenAIKey)
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.ChatModel = getEnv("ASSISTANT_CHAT_MODEL", c.ChatModel)
	c.EmbeddingModel = getEnv("ASSISTANT_EMBEDDING_MODEL", c.EmbeddingModel)
	c.Timeout = getEnvDuration("OPENAI_TIMEOUT", c.Timeout)
	c.MaxRetries = getEnvInt("OPENAI_MAX_RETRIES", c.MaxRetries)
	c.RetryDelay = getEnvDuration("OPENAI_RETRY_DELAY", c.RetryDelay)
	c.RequestsPerSecond = getEnvFloat("OPENAI_REQUESTS_PER_SECOND", c.RequestsPerSecond)

	c.ChatTokenLimit = getEnvInt("ASSISTANT_CHAT_TOKEN_LIMIT", c.ChatTokenLimit)
	c.EmbeddingTokenLimit = getEnvInt("ASSISTANT_EMBEDDING_TOKEN_LIMIT", c.EmbeddingTokenLimit)

	c.EmbeddingDim = getEnvInt("ASSISTANT_EMBEDDING_DIM", c.EmbeddingDim)
	c.StoreCapacity = getEnvInt("ASSISTANT_STORE_CAPACITY", c.StoreCapacity)
	c.TopK = getEnvInt("ASSISTANT_TOP_K", c.TopK)
	c.EmbeddingCacheSize = getEnvInt("ASSISTANT_EMBEDDING_CACHE_SIZE", c.EmbeddingCacheSize)
	c.PopulateConcurrency = getEnvInt("ASSISTANT_POPULATE_CONCURRENCY", c.PopulateConcurrency)
	c.Agent = getEnv("ASSISTANT_AGENT", c.Agent)
	c.SystemPrompt = getEnv("ASSISTANT_SYSTEM_PROMPT", c.SystemPrompt)

	c.CatalogURL = getEnv("CATALOG_URL", c.CatalogURL)
	c.DatabasePath = getEnv("PRODUCT_DATABASE_FILE", c.DatabasePath)
	c.SaveTranscripts = getEnvBool("ASSISTANT_SAVE_TRANSCRIPTS", c.SaveTranscripts)

	c.HTTPAddr = getEnv("ASSISTANT_HTTP_ADDR", c.HTTPAddr)
	c.Debug = getEnvBool("ASSISTANT_DEBUG", c.Debug)
}

func (c *Config) Validate() error {
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("ASSISTANT_EMBEDDING_DIM must be positive, got %d", c.EmbeddingDim)
	}
	if c.StoreCapacity <= 0 {
		return fmt.Errorf("ASSISTANT_STORE_CAPACITY must be positive, got %d", c.StoreCapacity)
	}
	if c.TopK < 0 {
		return fmt.Errorf("ASSISTANT_TOP_K must not be negative, got %d", c.TopK)
	}
	if c.ChatTokenLimit <= 0 {
		return fmt.Errorf("ASSISTANT_CHAT_TOKEN_LIMIT must be positive, got %d", c.ChatTokenLimit)
	}
	if c.EmbeddingTokenLimit <= 0 {
		return fmt.Errorf("ASSISTANT_EMBEDDING_TOKEN_LIMIT must be positive, got %d", c.EmbeddingTokenLimit)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("OPENAI_REQUESTS_PER_SECOND must not be negative, got %f", c.RequestsPerSecond)
	}
	if c.Agent != AgentRAG && c.Agent != AgentSimple {
		return fmt.Errorf("ASSISTANT_AGENT must be %q or %q, got %q", AgentRAG, AgentSimple, c.Agent)
	}
	return nil
}

// RequireOpenAI reports a missing API key
func (c *Config) RequireOpenAI() error {
	if c.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
