package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "http://localhost:9090", cfg.Generator.BaseURL)
	assert.Equal(t, "gemini-2.0-flash", cfg.Chat.DefaultModel)
	assert.Equal(t, []string{"Claude Sonnet 4"}, cfg.Chat.BuiltinSearchModels)
	assert.Equal(t, 2*time.Minute, cfg.Generator.ImageTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Search.CacheTTLWeb)
	assert.Equal(t, "sonar-pro", cfg.Search.Model)
	assert.False(t, cfg.CacheEnable)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GENERATOR_BASE_URL", "http://generators:3000/")
	t.Setenv("GEMINI_MODELS", "gemini-a,gemini-b")
	t.Setenv("PERPLEXITY_API_KEY", "pplx-test")
	t.Setenv("REPLICATE_API_KEY", "r8_test")
	t.Setenv("VIDEO_TIMEOUT", "45s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://generators:3000", cfg.Generator.BaseURL)
	assert.Equal(t, []string{"gemini-a", "gemini-b"}, cfg.Gemini.Models)
	assert.Equal(t, 45*time.Second, cfg.Generator.VideoTimeout)

	creds := cfg.Credentials()
	assert.True(t, creds.Perplexity)
	assert.True(t, creds.Replicate)
	assert.False(t, creds.Wavespeed)
}

func TestLoadRejectsMalformedDuration(t *testing.T) {
	t.Setenv("SEARCH_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
}
