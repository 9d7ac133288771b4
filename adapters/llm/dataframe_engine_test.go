package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"contractbot/domain/dataset"
	"contractbot/domain/query"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTables() []*dataset.Table {
	return []*dataset.Table{{
		Name:    "contracts.csv",
		Format:  dataset.FormatCSV,
		Columns: []dataset.Column{{Name: "vendor", Type: dataset.TypeString}, {Name: "value", Type: dataset.TypeInteger}},
		Rows: [][]dataset.Cell{
			{{Value: "Acme", Raw: "Acme"}, {Value: int64(100), Raw: "100"}},
			{{Value: "Globex", Raw: "Globex"}, {Value: int64(250), Raw: "250"}},
		},
	}}
}

func TestDataframeEngineChat(t *testing.T) {
	mock := &MockLLMClient{Response: `{"type": "number", "value": 350}`}
	engine := NewDataframeEngine(mock, query.BackendConfig{Model: "gpt-4o-mini", MaxTokens: 300, Verbose: true})

	answer, err := engine.Chat(context.Background(), "What is the total value?", sampleTables())
	require.NoError(t, err)

	assert.Equal(t, query.KindNumber, answer.Kind)
	assert.Equal(t, "350", answer.Text)
	assert.Equal(t, "gpt-4o-mini", answer.Model)

	require.Equal(t, 1, mock.Calls())
	req := mock.Requests[0]
	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.Equal(t, 300, req.MaxTokens)
	assert.Contains(t, req.System, "single JSON object")
	assert.Contains(t, req.Prompt, "1 table(s) are loaded.")
	assert.Contains(t, req.Prompt, `TABLE 1: "contracts.csv" (2 rows)`)
	assert.Contains(t, req.Prompt, "Globex,250")
	assert.Contains(t, req.Prompt, "Question: What is the total value?")
}

func TestDataframeEngineBackendError(t *testing.T) {
	mock := &MockLLMClient{Error: fmt.Errorf("connection refused")}
	engine := NewDataframeEngine(mock, query.BackendConfig{Model: "m"})

	_, err := engine.Chat(context.Background(), "q", sampleTables())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mock chat completion: connection refused")
}

func TestNewQueryEngineUnknownBackend(t *testing.T) {
	_, err := NewQueryEngine(context.Background(), query.BackendConfig{Backend: "cohere"}, query.Credential{Token: "k"})
	assert.Error(t, err)
}

// TestLiveDataframeEngine sends a real question to OpenAI
func TestLiveDataframeEngine(t *testing.T) {
	// Load environment variables from .env file (relative to test file location)
	if err := godotenv.Load("../../.env"); err != nil {
		_ = godotenv.Load(".env")
	}

	// Skip if no API key is available
	if os.Getenv("OPENAI_API_KEY") == "" {
		t.Skip("Skipping live test: OPENAI_API_KEY not set")
	}

	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	config := query.BackendConfig{
		Backend:   query.BackendOpenAI,
		Model:     model,
		MaxTokens: 500,
		Timeout:   60 * time.Second,
		Verbose:   true,
	}

	engine, err := NewQueryEngine(context.Background(), config, query.Credential{Token: os.Getenv("OPENAI_API_KEY")})
	require.NoError(t, err)

	answer, err := engine.Chat(context.Background(), "Which vendor has the highest value?", sampleTables())
	require.NoError(t, err)
	t.Logf("answer kind=%s text=%q", answer.Kind, answer.Text)
	assert.NotEmpty(t, answer.Raw)
}

func TestDataframeEngineCarriesUsage(t *testing.T) {
	srv, _ := newOpenAIStub(t, http.StatusOK, `{
		"choices": [{"message": {"role": "assistant", "content": "{\"type\":\"text\",\"value\":\"Two vendors\"}"}}],
		"usage": {"prompt_tokens": 90, "completion_tokens": 10, "total_tokens": 100}
	}`)

	client, err := newOpenAIClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Timeout: 5 * time.Second})
	require.NoError(t, err)
	engine := NewDataframeEngine(client, query.BackendConfig{Model: "gpt-4o-mini"})

	answer, err := engine.Chat(context.Background(), "How many vendors?", sampleTables())
	require.NoError(t, err)

	assert.Equal(t, "Two vendors", answer.Text)
	require.NotNil(t, answer.Usage)
	assert.Equal(t, 100, answer.Usage.TotalTokens)
	assert.Equal(t, 90, answer.Usage.PromptTokens)
}
