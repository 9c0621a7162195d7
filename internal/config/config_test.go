package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		APISecret:          "secret",
		LLMAPIKey:          "key",
		EmbeddingDimension: 384,
		ChunkSize:          1000,
		ChunkOverlap:       200,
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RequiredValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing api secret", func(c *Config) { c.APISecret = "" }},
		{"missing llm key", func(c *Config) { c.LLMAPIKey = "" }},
		{"zero dimension", func(c *Config) { c.EmbeddingDimension = 0 }},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }},
		{"overlap equals size", func(c *Config) { c.ChunkSize = 200; c.ChunkOverlap = 200 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "EMBEDDING_DIMENSION", "CHUNK_SIZE", "CHUNK_OVERLAP", "SCORE_THRESHOLD", "REQUEST_TIMEOUT"} {
		t.Setenv(key, "")
	}
	cfg := Load()

	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.EmbeddingDimension != 384 {
		t.Errorf("expected default dimension 384, got %d", cfg.EmbeddingDimension)
	}
	if cfg.ChunkSize != 1000 || cfg.ChunkOverlap != 200 {
		t.Errorf("expected default chunking 1000/200, got %d/%d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.ScoreThreshold != 0.3 {
		t.Errorf("expected default score threshold 0.3, got %v", cfg.ScoreThreshold)
	}
	if cfg.RequestTimeout != 60*time.Second {
		t.Errorf("expected default timeout 60s, got %v", cfg.RequestTimeout)
	}
}
