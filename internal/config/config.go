package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"contractbot/domain/query"
	"contractbot/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	AI       AIConfig
	Data     DataConfig
	Secrets  SecretsConfig
	LogLevel string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port           string
	GinMode        string
	MaxUploadBytes int64
	PreviewRows    int
}

// AIConfig holds LLM backend settings
type AIConfig struct {
	Backend        query.Backend
	Model          string
	BaseURL        string
	Temperature    float64
	MaxTokens      int
	Timeout        time.Duration
	Verbose        bool
	ResponseFormat query.ResponseFormat
	PromptsDir     string
	MaxPromptRows  int
}

// DataConfig holds dataset loading settings
type DataConfig struct {
	FallbackFile string
	ParseWorkers int
}

// SecretsConfig says where the API credential is looked up
type SecretsConfig struct {
	EnvKey string
	Files  []string
}

const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultQuestion    = "Firstly read all the data by yourself from the file?"
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   loadServerConfig(),
		Data:     loadDataConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	aiConfig, err := loadAIConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AI configuration")
	}
	config.AI = *aiConfig
	config.Secrets = loadSecretsConfig(config.AI.Backend)

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:           getEnvOrDefault("PORT", "8501"),
		GinMode:        getEnvOrDefault("GIN_MODE", "release"),
		MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 200)) * 1024 * 1024,
		PreviewRows:    getEnvIntOrDefault("PREVIEW_ROWS", 200),
	}
}

func loadAIConfig() (*AIConfig, error) {
	backend := query.Backend(strings.ToLower(getEnvOrDefault("LLM_BACKEND", string(query.BackendOpenAI))))

	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = DefaultModelFor(backend)
	}

	return &AIConfig{
		Backend:        backend,
		Model:          model,
		BaseURL:        getEnvOrDefault("LLM_BASE_URL", ""),
		Temperature:    getEnvFloatOrDefault("LLM_TEMPERATURE", 0),
		MaxTokens:      getEnvIntOrDefault("LLM_MAX_TOKENS", 2000),
		Timeout:        getEnvDurationOrDefault("LLM_TIMEOUT", 120*time.Second),
		Verbose:        getEnvBoolOrDefault("LLM_VERBOSE", true),
		ResponseFormat: query.ResponseFormat(strings.ToLower(getEnvOrDefault("RESPONSE_FORMAT", string(query.FormatMarkdown)))),
		PromptsDir:     getEnvOrDefault("PROMPTS_DIR", ""),
		MaxPromptRows:  getEnvIntOrDefault("MAX_PROMPT_ROWS", 200),
	}, nil
}

func loadDataConfig() DataConfig {
	return DataConfig{
		FallbackFile: getEnvOrDefault("FALLBACK_FILE", "./Sample.xlsx"),
		ParseWorkers: getEnvIntOrDefault("PARSE_WORKERS", 4),
	}
}

func loadSecretsConfig(backend query.Backend) SecretsConfig {
	files := []string{"secrets.toml", ".streamlit/secrets.toml"}
	if f := os.Getenv("SECRETS_FILE"); f != "" {
		files = []string{f}
	}
	return SecretsConfig{
		EnvKey: EnvKeyFor(backend),
		Files:  files,
	}
}

// DefaultModelFor returns the model used when LLM_MODEL is unset
func DefaultModelFor(backend query.Backend) string {
	if backend == query.BackendGemini {
		return DefaultGeminiModel
	}
	return DefaultOpenAIModel
}

// EnvKeyFor returns the environment variable holding the backend's API key
func EnvKeyFor(backend query.Backend) string {
	if backend == query.BackendGemini {
		return "GEMINI_API_KEY"
	}
	return "OPENAI_API_KEY"
}

func validateConfig(config *Config) error {
	switch config.AI.Backend {
	case query.BackendOpenAI, query.BackendGemini:
	default:
		return errors.ConfigInvalid("unsupported LLM_BACKEND: " + string(config.AI.Backend))
	}
	switch config.AI.ResponseFormat {
	case query.FormatText, query.FormatMarkdown:
	default:
		return errors.ConfigInvalid("unsupported RESPONSE_FORMAT: " + string(config.AI.ResponseFormat))
	}
	if config.Data.FallbackFile == "" {
		return errors.ConfigInvalid("fallback file path is required")
	}
	if config.Server.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Data.ParseWorkers <= 0 {
		config.Data.ParseWorkers = 1
	}
	return nil
}

// BackendConfig returns the session configuration bundle
func (c *Config) BackendConfig() query.BackendConfig {
	return query.BackendConfig{
		Backend:        c.AI.Backend,
		Model:          c.AI.Model,
		BaseURL:        c.AI.BaseURL,
		Temperature:    c.AI.Temperature,
		MaxTokens:      c.AI.MaxTokens,
		Timeout:        c.AI.Timeout,
		Verbose:        c.AI.Verbose,
		ResponseFormat: c.AI.ResponseFormat,
		MaxPromptRows:  c.AI.MaxPromptRows,
		PromptsDir:     c.AI.PromptsDir,
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
