package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434", cfg.OllamaBaseURL)
	assert.Equal(t, "mistral", cfg.Model)
	assert.Equal(t, "nomic-embed-text", cfg.EmbeddingModel)
	assert.Equal(t, 0.3, cfg.Temperature)
	assert.Equal(t, 0.8, cfg.TopP)
	assert.Equal(t, 40, cfg.TopK)
	assert.Equal(t, 500, cfg.NumPredict)
	assert.Equal(t, 1000, cfg.MaxInputLength)
	assert.Equal(t, 5, cfg.RetrievalTopK)
	assert.Equal(t, 10, cfg.RateLimit)
	assert.Equal(t, "memory", cfg.RateLimiterType)
	assert.Equal(t, "memory", cfg.VectorStoreType)
	assert.Equal(t, 60*time.Second, cfg.Timeout())
	assert.Equal(t, 60*time.Second, cfg.RateWindow())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OLLAMA_MODEL", "llama3.2")
	t.Setenv("RAG_TEMPERATURE", "0.7")
	t.Setenv("RAG_RATE_LIMIT", "3")
	t.Setenv("RAG_RATE_LIMITER", "redis")
	t.Setenv("RAG_VECTOR_STORE", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "llama3.2", cfg.Model)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, 3, cfg.RateLimit)
	assert.Equal(t, "redis", cfg.RateLimiterType)
	assert.Equal(t, "sqlite", cfg.VectorStoreType)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"temperature above range", "RAG_TEMPERATURE", "3.5"},
		{"negative temperature", "RAG_TEMPERATURE", "-0.1"},
		{"top_p zero", "RAG_TOP_P", "0"},
		{"top_p above one", "RAG_TOP_P", "1.5"},
		{"zero num_predict", "RAG_NUM_PREDICT", "0"},
		{"zero max input length", "OLLAMA_MAX_INPUT_LENGTH", "0"},
		{"zero timeout", "RAG_TIMEOUT", "0"},
		{"zero rate limit", "RAG_RATE_LIMIT", "0"},
		{"zero rate window", "RAG_RATE_WINDOW", "0"},
		{"unknown limiter backend", "RAG_RATE_LIMITER", "etcd"},
		{"unknown vector store", "RAG_VECTOR_STORE", "pinecone"},
		{"empty model", "OLLAMA_MODEL", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err, "a misconfigured service must not start")
		})
	}
}
