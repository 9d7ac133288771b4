package llm

import (
	"context"

	"contractbot/domain/query"
	"contractbot/internal/errors"
	"contractbot/ports"
)

// NewLLMClient creates the client for the configured backend. Construction
// never contacts the provider.
func NewLLMClient(ctx context.Context, config Config) (ports.LLMClient, error) {
	switch config.Backend {
	case query.BackendOpenAI, "":
		client, err := newOpenAIClient(config)
		if err != nil {
			return nil, errors.WithCode(errors.CodeMissingCredential, err)
		}
		return client, nil
	case query.BackendGemini:
		client, err := newGeminiClient(ctx, config)
		if err != nil {
			if config.APIKey == "" {
				return nil, errors.WithCode(errors.CodeMissingCredential, err)
			}
			return nil, errors.Wrap(err, "failed to initialize gemini backend")
		}
		return client, nil
	default:
		return nil, errors.ConfigInvalid("unsupported LLM backend: " + string(config.Backend))
	}
}
