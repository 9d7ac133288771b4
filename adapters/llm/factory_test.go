package llm

import (
	"context"
	"strings"
	"testing"

	"contractbot/domain/query"
	"contractbot/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMClientSelectsBackend(t *testing.T) {
	client, err := NewLLMClient(context.Background(), Config{Backend: query.BackendOpenAI, APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, "openai", client.Provider())

	client, err = NewLLMClient(context.Background(), Config{Backend: query.BackendGemini, APIKey: "g-test"})
	require.NoError(t, err)
	assert.Equal(t, "gemini", client.Provider())
}

func TestNewLLMClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		code   string
	}{
		{name: "openai without key", config: Config{Backend: query.BackendOpenAI}, code: errors.CodeMissingCredential},
		{name: "gemini without key", config: Config{Backend: query.BackendGemini}, code: errors.CodeMissingCredential},
		{name: "unknown backend", config: Config{Backend: "cohere", APIKey: "k"}, code: errors.CodeConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLLMClient(context.Background(), tt.config)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestNewLLMClientMissingKeyMessage(t *testing.T) {
	_, err := NewLLMClient(context.Background(), Config{Backend: query.BackendOpenAI})
	require.Error(t, err)
	assert.Equal(t, 1, strings.Count(err.Error(), "API key"), err.Error())
}

func TestConfigFromBackend(t *testing.T) {
	cfg := ConfigFromBackend(query.BackendConfig{Backend: query.BackendGemini, Model: "gemini-2.5-flash", MaxTokens: 99},
		query.Credential{Token: "tok", Source: query.CredentialFromForm})

	assert.Equal(t, query.BackendGemini, cfg.Backend)
	assert.Equal(t, "tok", cfg.APIKey)
	assert.Equal(t, 99, cfg.MaxTokens)
}
