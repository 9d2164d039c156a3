package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/competency")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultEmbeddingModel, cfg.EmbeddingModel)
	assert.Equal(t, DefaultDimension, cfg.Dimension)
	assert.Equal(t, DefaultSearchTopK, cfg.SearchTopK)
	assert.Equal(t, DefaultUpsertBatchSize, cfg.UpsertBatchSize)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/competency")
	t.Setenv("PORT", "9000")
	t.Setenv("EMBEDDING_DIMENSION", "768")
	t.Setenv("SEARCH_TOP_K", "not a number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 768, cfg.Dimension)
	assert.Equal(t, DefaultSearchTopK, cfg.SearchTopK)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cfg := &Config{Dimension: 0, SearchTopK: 5, AnalyzeTopK: 3, FilterTopN: 3, UpsertBatchSize: 100}
	assert.Error(t, cfg.Validate())

	cfg.Dimension = 384
	cfg.FilterTopN = -1
	assert.Error(t, cfg.Validate())

	cfg.FilterTopN = 3
	assert.NoError(t, cfg.Validate())
}
