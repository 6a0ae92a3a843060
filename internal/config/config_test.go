package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsMatchHostedModels(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DashScopeBaseURL, cfg.LLM.BaseURL)
	assert.Equal(t, "qwen-turbo", cfg.LLM.ChatModel)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-6)
	assert.Equal(t, 512, cfg.LLM.MaxTokens)
	assert.Equal(t, "qwen-vl-plus", cfg.LLM.DamageModel)
	assert.Equal(t, "qwen-vl-max", cfg.LLM.DocumentModel)
	assert.Equal(t, "text-embedding-v3", cfg.Embedding.Model)
	assert.Equal(t, 5, cfg.Vector.TopK)
	assert.Equal(t, "quickstart", cfg.Vector.Collection)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MC_HTTP_ADDR", ":9000")
	t.Setenv("MC_DEV_MODE", "false")
	t.Setenv("MC_TOPK", "3")
	t.Setenv("MC_CHAT_MODEL", "qwen-plus")
	t.Setenv("MC_EMBEDDING_MODEL", "text-embedding-v2")
	t.Setenv("MC_VECTOR_PROVIDER", "qdrant")
	t.Setenv("MC_HTTP_ALLOW_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("MC_TIMEOUT_VISION", "90s")
	t.Setenv("MC_LLM_TEMPERATURE", "0.2")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTP.Addr)
	assert.False(t, cfg.Dev.Mode)
	assert.Equal(t, 3, cfg.Vector.TopK)
	assert.Equal(t, "qwen-plus", cfg.LLM.ChatModel)
	assert.Equal(t, "text-embedding-v2", cfg.Embedding.Model)
	assert.Equal(t, "qdrant", cfg.Vector.Provider)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowOrigins)
	assert.Equal(t, 90*time.Second, cfg.Timeouts.Vision)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-6)
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "myclaim.yaml")
	data := []byte(`
http:
  addr: ":7000"
vector:
  provider: qdrant
  url: http://qdrant:6333
  top_k: 8
models:
  serving_url: http://models:8080
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	t.Setenv("MC_TOPK", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, "http://qdrant:6333", cfg.Vector.URL)
	assert.Equal(t, 2, cfg.Vector.TopK)
	assert.Equal(t, "http://models:8080", cfg.Models.ServingURL)
	assert.Equal(t, "qwen-turbo", cfg.LLM.ChatModel)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.HTTP.Addr)
}

func TestLoadRejectsNonPositiveTopK(t *testing.T) {
	t.Setenv("MC_TOPK", "0")
	_, err := Load("")
	assert.Error(t, err)
}

func TestParseBool(t *testing.T) {
	assert.True(t, parseBool("YES", false))
	assert.False(t, parseBool("off", true))
	assert.True(t, parseBool("maybe", true))
}
