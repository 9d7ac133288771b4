package ui

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"contractbot/adapters/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppServesPage(t *testing.T) {
	app := NewApp(newTestRenderer(t, testConfig(writeFallback(t)), &llm.MockLLMClient{}))

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Chatbot for Contracts Management")
	assert.Contains(t, rec.Body.String(), "Road resurfacing")
}

func TestAppRenderExecute(t *testing.T) {
	client := &llm.MockLLMClient{Response: "```json\n{\"type\": \"table\", \"columns\": [\"Contract\"], \"rows\": [[\"Bridge repair\"]], \"explanation\": \"Largest contract\"}\n```"}
	app := NewApp(newTestRenderer(t, testConfig(writeFallback(t)), client))

	rec := post(t, app, "/render",
		map[string]string{"api_key": "sk-form", "question": "Which contract is largest?", "action": "execute"}, nil, true)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "<html")
	assert.Contains(t, body, "<th>Contract</th>")
	assert.Contains(t, body, "Largest contract")
	assert.Equal(t, 1, client.Calls())
}

func TestAppHealth(t *testing.T) {
	app := NewApp(newTestRenderer(t, testConfig(writeFallback(t)), &llm.MockLLMClient{}))

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAppRejectsOversizedUpload(t *testing.T) {
	cfg := testConfig(writeFallback(t))
	cfg.Server.MaxUploadBytes = 8
	client := &llm.MockLLMClient{}
	app := NewApp(newTestRenderer(t, cfg, client))

	rec := post(t, app, "/render",
		map[string]string{"api_key": "sk-form", "question": "Who?", "action": "execute"},
		map[string]string{"people.csv": "name\nAlice\nBob\n"}, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "people.csv is 15 bytes, the limit is 8")
	assert.Equal(t, 0, client.Calls())
}
