package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APISecret string

	// Qdrant connection
	QdrantURL      string
	QdrantAPIKey   string
	CollectionName string

	// Embedding service
	EmbeddingBaseURL   string
	EmbeddingAPIKey    string
	EmbeddingModel     string
	EmbeddingDimension int

	// Chat completion
	LLMBaseURL   string
	LLMAPIKey    string
	LLMModel     string
	LLMMaxTokens int

	// Chunking
	ChunkSize    int
	ChunkOverlap int

	// Retrieval
	RetrievalLimit    int
	ScoreThreshold    float64
	ContextChunkLimit int

	// Network
	RequestTimeout time.Duration
	MaxDownloadMB  int64
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8000"),

		APISecret: os.Getenv("API_SECRET"),

		QdrantURL:      envOr("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:   os.Getenv("QDRANT_API_KEY"),
		CollectionName: envOr("COLLECTION_NAME", "documents"),

		EmbeddingBaseURL:   envOr("EMBEDDING_BASE_URL", "http://localhost:8081/v1"),
		EmbeddingAPIKey:    os.Getenv("EMBEDDING_API_KEY"),
		EmbeddingModel:     envOr("EMBEDDING_MODEL", "all-MiniLM-L6-v2"),
		EmbeddingDimension: envInt("EMBEDDING_DIMENSION", 384),

		LLMBaseURL:   envOr("LLM_BASE_URL", "https://api.x.ai/v1"),
		LLMAPIKey:    os.Getenv("LLM_API_KEY"),
		LLMModel:     envOr("LLM_MODEL", "grok-beta"),
		LLMMaxTokens: envInt("LLM_MAX_TOKENS", 4000),

		ChunkSize:    envInt("CHUNK_SIZE", 1000),
		ChunkOverlap: envInt("CHUNK_OVERLAP", 200),

		RetrievalLimit:    envInt("RETRIEVAL_LIMIT", 10),
		ScoreThreshold:    envFloat("SCORE_THRESHOLD", 0.3),
		ContextChunkLimit: envInt("CONTEXT_CHUNK_LIMIT", 5),

		RequestTimeout: envDuration("REQUEST_TIMEOUT", 60*time.Second),
		MaxDownloadMB:  envInt64("MAX_DOWNLOAD_MB", 50),
	}

	if cfg.RetrievalLimit <= 0 {
		cfg.RetrievalLimit = 10
	}
	if cfg.ContextChunkLimit <= 0 {
		cfg.ContextChunkLimit = 5
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if cfg.MaxDownloadMB <= 0 {
		cfg.MaxDownloadMB = 50
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APISecret == "" {
		return fmt.Errorf("API_SECRET is required")
	}
	if c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	if c.EmbeddingDimension <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSION must be positive, got %d", c.EmbeddingDimension)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("CHUNK_OVERLAP must not be negative, got %d", c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
