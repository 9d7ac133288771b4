package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"contractbot/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGeminiStub(t *testing.T, reply string) (*httptest.Server, *map[string]interface{}) {
	t.Helper()
	var captured map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.5-flash:generateContent"), r.URL.Path)
		assert.Equal(t, "g-test", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func newStubbedGeminiClient(t *testing.T, baseURL string) *GeminiClient {
	t.Helper()
	client, err := newGeminiClient(context.Background(), Config{
		APIKey:      "g-test",
		BaseURL:     baseURL,
		Temperature: 0,
		Timeout:     5 * time.Second,
	})
	require.NoError(t, err)
	return client
}

func TestGeminiClientChatCompletion(t *testing.T) {
	srv, captured := newGeminiStub(t, `{
		"candidates": [{"content": {"role": "model", "parts": [{"text": "{\"type\":\"number\",\"value\":42}"}]}}],
		"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 5, "totalTokenCount": 17}
	}`)
	client := newStubbedGeminiClient(t, srv.URL)

	resp, err := client.ChatCompletion(context.Background(), ports.ChatRequest{
		Model:     "gemini-2.5-flash",
		System:    "be brief",
		Prompt:    "how many rows?",
		MaxTokens: 256,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"type":"number","value":42}`, resp.Content)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 12, resp.Usage.PromptTokens)
	assert.Equal(t, 5, resp.Usage.CompletionTokens)
	assert.Equal(t, 17, resp.Usage.TotalTokens)
	assert.Equal(t, "gemini", resp.Usage.Provider)
	assert.Equal(t, "gemini-2.5-flash", resp.Usage.Model)

	body := *captured
	system := body["systemInstruction"].(map[string]interface{})
	systemParts := system["parts"].([]interface{})
	require.Len(t, systemParts, 1)
	assert.Equal(t, "be brief", systemParts[0].(map[string]interface{})["text"])

	generation := body["generationConfig"].(map[string]interface{})
	assert.Equal(t, float64(256), generation["maxOutputTokens"])

	contents := body["contents"].([]interface{})
	require.Len(t, contents, 1)
	content := contents[0].(map[string]interface{})
	assert.Equal(t, "user", content["role"])
	assert.Equal(t, "how many rows?", content["parts"].([]interface{})[0].(map[string]interface{})["text"])
}

func TestGeminiClientEmptyReply(t *testing.T) {
	srv, _ := newGeminiStub(t, `{"candidates": [{"content": {"role": "model", "parts": [{"text": "  "}]}}]}`)
	client := newStubbedGeminiClient(t, srv.URL)

	_, err := client.ChatCompletion(context.Background(), ports.ChatRequest{Model: "gemini-2.5-flash", Prompt: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text")
}

func TestGeminiClientRequiresModel(t *testing.T) {
	client := newStubbedGeminiClient(t, "http://127.0.0.1:0")

	_, err := client.ChatCompletion(context.Background(), ports.ChatRequest{Prompt: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing model")
}
