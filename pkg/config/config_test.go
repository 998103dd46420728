package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("test-version")
	require.NoError(t, err)

	assert.Equal(t, "test-version", cfg.Version)
	assert.Equal(t, "127.0.0.1", cfg.BindAddr)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 8, cfg.Analysis.MaxConcurrentTables)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("LLM_MODEL", "claude-sonnet-4-20250514")
	t.Setenv("LLM_API_KEY", "secret-key")
	t.Setenv("RETRY_MAX_ATTEMPTS", "5")

	cfg, err := Load("v1")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.LLM.Model)
	assert.Equal(t, "secret-key", cfg.LLM.APIKey)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "carrier-pigeon")

	_, err := Load("v1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported llm provider")
}

func TestLoad_RejectsZeroAttempts(t *testing.T) {
	t.Setenv("RETRY_MAX_ATTEMPTS", "0")

	_, err := Load("v1")
	require.Error(t, err)
}

func TestRetryConfig_ToRetryConfig(t *testing.T) {
	rc := RetryConfig{
		MaxAttempts:         4,
		InitialDelaySeconds: 1,
		MaxDelaySeconds:     10,
		Multiplier:          3.0,
		JitterFactor:        0.1,
	}

	cfg := rc.ToRetryConfig()
	assert.Equal(t, 4, cfg.MaxAttempts)
	assert.Equal(t, time.Second, cfg.InitialDelay)
	assert.Equal(t, 10*time.Second, cfg.MaxDelay)
	assert.Equal(t, 3.0, cfg.Multiplier)
}

func TestLLMConfig_CallTimeout(t *testing.T) {
	c := LLMConfig{CallTimeoutSeconds: 90}
	assert.Equal(t, 90*time.Second, c.CallTimeout())

	c.CallTimeoutSeconds = 0
	assert.Zero(t, c.CallTimeout(), "zero disables the per-call timeout")
}
