package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("EMBEDDING_DIMENSION", "")
	t.Setenv("ORPHAN_GRACE_MINUTES", "")
	t.Setenv("MAX_TOKENS", "")

	cfg := Load()

	assert.Equal(t, 384, cfg.Ai.EmbeddingDimension)
	assert.Equal(t, 10*time.Minute, cfg.Rag.OrphanGrace)
	assert.Equal(t, 1000, cfg.Ai.MaxTokens)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("VECTOR_STORE", "qdrant")
	t.Setenv("EMBEDDING_RPS", "2.5")
	t.Setenv("ORPHAN_GRACE_MINUTES", "3")
	t.Setenv("GO_ENV", "production")

	cfg := Load()

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "qdrant", cfg.Rag.VectorStore)
	assert.Equal(t, 2.5, cfg.Ai.EmbeddingRPS)
	assert.Equal(t, 3*time.Minute, cfg.Rag.OrphanGrace)
	assert.True(t, cfg.IsProduction())
}

func TestGetEnvAsInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	assert.Equal(t, 42, getEnvAsInt("SOME_INT", 42))
}

func TestLoad_NonPositiveMinutesFallBack(t *testing.T) {
	t.Setenv("ORPHAN_SWEEP_INTERVAL_MINUTES", "0")
	t.Setenv("ORPHAN_GRACE_MINUTES", "-3")

	cfg := Load()

	assert.Equal(t, 5*time.Minute, cfg.Rag.OrphanSweepEvery)
	assert.Equal(t, 10*time.Minute, cfg.Rag.OrphanGrace)
}
