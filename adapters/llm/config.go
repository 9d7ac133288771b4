package llm

import (
	"time"

	"contractbot/domain/query"
)

// Config holds client settings for one backend
type Config struct {
	Backend     query.Backend
	Model       string        // e.g. "gpt-4o-mini"
	APIKey      string        // never logged
	BaseURL     string        // optional override (openai default: https://api.openai.com/v1)
	Temperature float64       // 0.0-1.0, lower = more deterministic
	MaxTokens   int           // max tokens in response
	Timeout     time.Duration // request timeout
}

// ConfigFromBackend builds a client config from the session bundle
func ConfigFromBackend(bc query.BackendConfig, credential query.Credential) Config {
	return Config{
		Backend:     bc.Backend,
		Model:       bc.Model,
		APIKey:      credential.Token,
		BaseURL:     bc.BaseURL,
		Temperature: bc.Temperature,
		MaxTokens:   bc.MaxTokens,
		Timeout:     bc.Timeout,
	}
}
