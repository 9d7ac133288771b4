package query

import (
	"strings"
	"time"
)

// Backend names the LLM provider a session talks to
type Backend string

const (
	BackendOpenAI Backend = "openai"
	BackendGemini Backend = "gemini"
)

// ResponseFormat selects how an answer is post-processed for display
type ResponseFormat string

const (
	FormatText     ResponseFormat = "text"
	FormatMarkdown ResponseFormat = "markdown"
)

// BackendConfig is the configuration bundle a query session is built with
type BackendConfig struct {
	Backend        Backend
	Model          string
	BaseURL        string
	Temperature    float64
	MaxTokens      int
	Timeout        time.Duration
	Verbose        bool
	ResponseFormat ResponseFormat
	MaxPromptRows  int
	PromptsDir     string
}

// CredentialSource records where the API key was found
type CredentialSource string

const (
	CredentialFromEnv     CredentialSource = "env"
	CredentialFromSecrets CredentialSource = "secrets_file"
	CredentialFromForm    CredentialSource = "form"
	CredentialNone        CredentialSource = "none"
)

// Credential is the opaque API token plus its origin
type Credential struct {
	Token  string
	Source CredentialSource
}

// IsEmpty reports whether there is no usable token
func (c Credential) IsEmpty() bool {
	return strings.TrimSpace(c.Token) == ""
}

// AnswerKind describes the shape of the value the backend returned
type AnswerKind string

const (
	KindText   AnswerKind = "text"
	KindNumber AnswerKind = "number"
	KindTable  AnswerKind = "table"
)

// AnswerTable is a tabular answer value
type AnswerTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Usage is the token accounting the backend reported for one call
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Answer is the result of executing one question
type Answer struct {
	Kind        AnswerKind    `json:"kind"`
	Text        string        `json:"text"`
	Explanation string        `json:"explanation,omitempty"`
	Table       *AnswerTable  `json:"table,omitempty"`
	HTML        string        `json:"html,omitempty"`
	Raw         string        `json:"-"`
	Model       string        `json:"model"`
	Duration    time.Duration `json:"duration_ns"`
	Usage       *Usage        `json:"usage,omitempty"`
}
