package ports

import "context"

// UsageData represents raw usage data reported by the LLM provider
type UsageData struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
	Provider         string `json:"provider"`
}

// ChatRequest is one system + user exchange
type ChatRequest struct {
	Model     string
	System    string
	Prompt    string
	MaxTokens int
}

// LLMResponse is the model reply with optional usage data
type LLMResponse struct {
	Content string
	Usage   *UsageData
}

// LLMClient interface for LLM providers
type LLMClient interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (*LLMResponse, error)
	Provider() string
}
