package config

import (
	"testing"
	"time"

	"contractbot/domain/query"
	"contractbot/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"LLM_BACKEND", "LLM_MODEL", "RESPONSE_FORMAT", "FALLBACK_FILE", "SECRETS_FILE", "PORT", "LLM_TIMEOUT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, query.BackendOpenAI, cfg.AI.Backend)
	assert.Equal(t, DefaultOpenAIModel, cfg.AI.Model)
	assert.Equal(t, query.FormatMarkdown, cfg.AI.ResponseFormat)
	assert.Equal(t, 120*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "./Sample.xlsx", cfg.Data.FallbackFile)
	assert.Equal(t, "8501", cfg.Server.Port)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Secrets.EnvKey)
	assert.Equal(t, []string{"secrets.toml", ".streamlit/secrets.toml"}, cfg.Secrets.Files)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoadGeminiBackend(t *testing.T) {
	t.Setenv("LLM_BACKEND", "Gemini")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("SECRETS_FILE", "/etc/bot/secrets.toml")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, query.BackendGemini, cfg.AI.Backend)
	assert.Equal(t, DefaultGeminiModel, cfg.AI.Model)
	assert.Equal(t, "GEMINI_API_KEY", cfg.Secrets.EnvKey)
	assert.Equal(t, []string{"/etc/bot/secrets.toml"}, cfg.Secrets.Files)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("LLM_BACKEND", "cohere")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestLoadRejectsUnknownResponseFormat(t *testing.T) {
	t.Setenv("LLM_BACKEND", "")
	t.Setenv("RESPONSE_FORMAT", "streamlit")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestBackendConfig(t *testing.T) {
	t.Setenv("LLM_BACKEND", "")
	t.Setenv("RESPONSE_FORMAT", "text")
	t.Setenv("LLM_VERBOSE", "false")
	t.Setenv("LLM_MAX_TOKENS", "512")
	t.Setenv("LLM_TIMEOUT", "5s")

	cfg, err := Load()
	require.NoError(t, err)

	bc := cfg.BackendConfig()
	assert.Equal(t, query.FormatText, bc.ResponseFormat)
	assert.False(t, bc.Verbose)
	assert.Equal(t, 512, bc.MaxTokens)
	assert.Equal(t, 5*time.Second, bc.Timeout)
}

func TestEnvHelpersIgnoreGarbage(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DUR", "soon")

	assert.Equal(t, 7, getEnvIntOrDefault("X_INT", 7))
	assert.True(t, getEnvBoolOrDefault("X_BOOL", true))
	assert.Equal(t, time.Minute, getEnvDurationOrDefault("X_DUR", time.Minute))
}
