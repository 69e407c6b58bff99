// Package config loads and validates application configuration.
// Configuration comes from environment variables with defaults; it is read
// once at startup, validated eagerly and passed into constructors. Nothing
// reads the environment after startup.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all tunables for the assistant pipeline.
type Config struct {
	// Generation backend (Ollama-compatible HTTP API).
	OllamaBaseURL string `env:"OLLAMA_BASE_URL" env-default:"http://localhost:11434"`
	Model         string `env:"OLLAMA_MODEL" env-default:"mistral"`

	// Embedding model served by the same backend.
	EmbeddingModel string `env:"OLLAMA_EMBEDDING_MODEL" env-default:"nomic-embed-text"`

	// Generation parameters. Temperature stays low to minimize hallucination.
	Temperature float64 `env:"RAG_TEMPERATURE" env-default:"0.3"`
	TopP        float64 `env:"RAG_TOP_P" env-default:"0.8"`
	TopK        int     `env:"RAG_TOP_K" env-default:"40"`
	NumPredict  int     `env:"RAG_NUM_PREDICT" env-default:"500"`

	// Request handling.
	MaxInputLength int `env:"OLLAMA_MAX_INPUT_LENGTH" env-default:"1000"`
	TimeoutSecs    int `env:"RAG_TIMEOUT" env-default:"60"`
	RetrievalTopK  int `env:"RAG_RETRIEVAL_TOP_K" env-default:"5"`

	// Rate limiting (fixed window).
	RateLimit       int `env:"RAG_RATE_LIMIT" env-default:"10"`
	RateWindowSecs  int `env:"RAG_RATE_WINDOW" env-default:"60"`

	// Rate limiter backend: "memory" or "redis".
	RateLimiterType string `env:"RAG_RATE_LIMITER" env-default:"memory"`
	RedisAddr       string `env:"REDIS_ADDR" env-default:"localhost:6379"`

	// Vector store backend: "memory" or "sqlite".
	VectorStoreType string `env:"RAG_VECTOR_STORE" env-default:"memory"`
	DataPath        string `env:"RAG_DATA_PATH" env-default:"./data"`

	// Knowledge base seed file, watched for edits.
	KnowledgeFile string `env:"RAG_KNOWLEDGE_FILE" env-default:"./knowledge.json"`

	// HTTP server.
	HTTPAddr string `env:"HTTP_ADDR" env-default:":8080"`

	// Environment name, controls log encoding.
	Env string `env:"ENVIRONMENT" env-default:"local"`
}

// Load reads configuration from the environment and validates it.
// Invalid values fail fast so a misconfigured service never starts.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.OllamaBaseURL == "" {
		return fmt.Errorf("OLLAMA_BASE_URL must not be empty")
	}
	if c.Model == "" {
		return fmt.Errorf("OLLAMA_MODEL must not be empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("RAG_TEMPERATURE %v out of range [0,2]", c.Temperature)
	}
	if c.TopP <= 0 || c.TopP > 1 {
		return fmt.Errorf("RAG_TOP_P %v out of range (0,1]", c.TopP)
	}
	if c.NumPredict <= 0 {
		return fmt.Errorf("RAG_NUM_PREDICT must be positive, got %d", c.NumPredict)
	}
	if c.MaxInputLength <= 0 {
		return fmt.Errorf("OLLAMA_MAX_INPUT_LENGTH must be positive, got %d", c.MaxInputLength)
	}
	if c.TimeoutSecs <= 0 {
		return fmt.Errorf("RAG_TIMEOUT must be positive, got %d", c.TimeoutSecs)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("RAG_RATE_LIMIT must be positive, got %d", c.RateLimit)
	}
	if c.RateWindowSecs <= 0 {
		return fmt.Errorf("RAG_RATE_WINDOW must be positive, got %d", c.RateWindowSecs)
	}
	switch c.RateLimiterType {
	case "memory", "redis":
	default:
		return fmt.Errorf("RAG_RATE_LIMITER must be memory or redis, got %q", c.RateLimiterType)
	}
	switch c.VectorStoreType {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("RAG_VECTOR_STORE must be memory or sqlite, got %q", c.VectorStoreType)
	}
	return nil
}

// Timeout returns the generation call timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// RateWindow returns the rate-limit window as a duration.
func (c *Config) RateWindow() time.Duration {
	return time.Duration(c.RateWindowSecs) * time.Second
}
