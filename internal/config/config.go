// Package config provides environment-driven configuration for the competency model API.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Defaults for tunable pipeline parameters.
const (
	DefaultPort            = 8080
	DefaultEmbeddingModel  = "text-embedding-004"
	DefaultDimension       = 384
	DefaultSearchTopK      = 5
	DefaultAnalyzeTopK     = 3
	DefaultFilterTopN      = 3
	DefaultTextTopK        = 5
	DefaultUpsertBatchSize = 100
)

// Config holds all runtime configuration. Values are read from the
// environment once at startup and injected into components; nothing
// reads the environment after Load returns.
type Config struct {
	Port        int
	DatabaseURL string
	APIKey      string // Gemini API key

	EmbeddingModel string
	Dimension      int // embedding vector dimension

	SearchTopK      int // default k for /api/search-jobs
	AnalyzeTopK     int // k used by the analyzer's internal search
	FilterTopN      int // entries kept per scale in the filtered framework
	TextTopK        int // skills/abilities folded into each embedding text
	UpsertBatchSize int // vectors per index upsert call
}

// Load reads configuration from the environment, applying defaults
// for everything except DATABASE_URL.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            envInt("PORT", DefaultPort),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		APIKey:          os.Getenv("GEMINI_API_KEY"),
		EmbeddingModel:  envString("EMBEDDING_MODEL", DefaultEmbeddingModel),
		Dimension:       envInt("EMBEDDING_DIMENSION", DefaultDimension),
		SearchTopK:      envInt("SEARCH_TOP_K", DefaultSearchTopK),
		AnalyzeTopK:     envInt("ANALYZE_TOP_K", DefaultAnalyzeTopK),
		FilterTopN:      envInt("FILTER_TOP_N", DefaultFilterTopN),
		TextTopK:        envInt("TEXT_TOP_K", DefaultTextTopK),
		UpsertBatchSize: envInt("UPSERT_BATCH_SIZE", DefaultUpsertBatchSize),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	return cfg, nil
}

// Validate checks that tunable values are sane.
func (c *Config) Validate() error {
	if c.Dimension <= 0 {
		return fmt.Errorf("config error: embedding dimension must be positive, got %d", c.Dimension)
	}
	if c.SearchTopK <= 0 || c.AnalyzeTopK <= 0 {
		return fmt.Errorf("config error: search top-k values must be positive")
	}
	if c.FilterTopN <= 0 {
		return fmt.Errorf("config error: 'FILTER_TOP_N' must be positive")
	}
	if c.UpsertBatchSize <= 0 {
		return fmt.Errorf("config error: 'UPSERT_BATCH_SIZE' must be positive")
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
