// ABOUTME: Centralized configuration for the mddrag MCP server
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Thegod322/mddrag/internal/chunker"
	"github.com/Thegod322/mddrag/internal/index/sqlite"
)

// Config holds all configuration for the documentation RAG system
type Config struct {
	// Vault settings
	VaultRoot string
	DataDir   string

	// OpenAI settings
	OpenAIKey      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Chunking settings
	ChunkSize    int
	ChunkOverlap int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		VaultRoot:      os.Getenv("MDDRAG_VAULT"),
		DataDir:        getEnv("MDDRAG_DATA_DIR", sqlite.DefaultDataDir()),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		EmbeddingModel: getEnv("MDDRAG_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:        getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:     getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:     getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		ChunkSize:      getEnvInt("MDDRAG_CHUNK_SIZE", chunker.DefaultChunkSize),
		ChunkOverlap:   getEnvInt("MDDRAG_CHUNK_OVERLAP", chunker.DefaultOverlap),
	}

	return cfg, cfg.Validate()
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("MDDRAG_CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("MDDRAG_CHUNK_OVERLAP must be in [0, %d), got %d", c.ChunkSize, c.ChunkOverlap)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	return nil
}

// DBPath returns the index database path inside the data directory
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "index.db")
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
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
