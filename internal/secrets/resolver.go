// Package secrets resolves the LLM API credential from the process
// environment, falling back to a streamlit-style secrets.toml file.
package secrets

import (
	"fmt"
	"os"
	"strings"

	"contractbot/domain/query"
	"contractbot/internal"
	"contractbot/internal/config"

	"github.com/pelletier/go-toml/v2"
)

// Resolver looks up a named credential
type Resolver struct {
	envKey string
	files  []string
	logger *internal.Logger
}

// NewResolver creates a resolver for the configured key and secrets files
func NewResolver(cfg config.SecretsConfig) *Resolver {
	envKey := cfg.EnvKey
	if envKey == "" {
		envKey = "OPENAI_API_KEY"
	}
	return &Resolver{
		envKey: envKey,
		files:  cfg.Files,
		logger: internal.DefaultLogger.With("Secrets"),
	}
}

// EnvKey returns the name of the variable being resolved
func (r *Resolver) EnvKey() string {
	return r.envKey
}

// Resolve returns the credential from the environment, then the first secrets
// file that defines it. A missing credential is not an error.
func (r *Resolver) Resolve() query.Credential {
	if value, ok := os.LookupEnv(r.envKey); ok && strings.TrimSpace(value) != "" {
		r.logger.Debug("%s resolved from environment", r.envKey)
		return query.Credential{Token: strings.TrimSpace(value), Source: query.CredentialFromEnv}
	}

	for _, path := range r.files {
		value, err := lookupFile(path, r.envKey)
		if err != nil {
			if !os.IsNotExist(err) {
				r.logger.Warn("ignoring secrets file %s: %v", path, err)
			}
			continue
		}
		if value != "" {
			r.logger.Debug("%s resolved from %s", r.envKey, path)
			return query.Credential{Token: value, Source: query.CredentialFromSecrets}
		}
	}

	r.logger.Debug("%s not found in environment or secrets files", r.envKey)
	return query.Credential{Source: query.CredentialNone}
}

// lookupFile reads a TOML file and returns key from the top level, or from
// the first table that contains it
func lookupFile(path, key string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var doc map[string]interface{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if value, ok := stringValue(doc[key]); ok {
		return value, nil
	}
	for _, v := range doc {
		if table, ok := v.(map[string]interface{}); ok {
			if value, ok := stringValue(table[key]); ok {
				return value, nil
			}
		}
	}
	return "", nil
}

func stringValue(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Override returns the form-supplied token when present, else the resolved one
func Override(resolved query.Credential, formValue string) query.Credential {
	if v := strings.TrimSpace(formValue); v != "" {
		if v == resolved.Token {
			return resolved
		}
		return query.Credential{Token: v, Source: query.CredentialFromForm}
	}
	return resolved
}
