package app

import (
	"context"
	"fmt"
	"testing"

	"contractbot/domain/dataset"
	"contractbot/domain/query"
	"contractbot/internal/errors"
	"contractbot/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockQueryEngine is a testify mock of ports.QueryEngine
type MockQueryEngine struct {
	mock.Mock
}

func (m *MockQueryEngine) Chat(ctx context.Context, question string, tables []*dataset.Table) (*query.Answer, error) {
	args := m.Called(ctx, question, tables)
	answer, _ := args.Get(0).(*query.Answer)
	return answer, args.Error(1)
}

func factoryFor(engine ports.QueryEngine) EngineFactory {
	return func(ctx context.Context, config query.BackendConfig, credential query.Credential) (ports.QueryEngine, error) {
		return engine, nil
	}
}

func oneTable() []*dataset.Table {
	return []*dataset.Table{{
		Name:    "people.csv",
		Columns: []dataset.Column{{Name: "name", Type: dataset.TypeString}},
		Rows:    [][]dataset.Cell{{{Value: "Alice", Raw: "Alice"}}},
	}}
}

var (
	testCredential = query.Credential{Token: "sk-test", Source: query.CredentialFromEnv}
	testConfig     = query.BackendConfig{Backend: query.BackendOpenAI, Model: "gpt-4o-mini", ResponseFormat: query.FormatMarkdown}
)

func TestNewQuerySessionPreconditions(t *testing.T) {
	engine := &MockQueryEngine{}

	tests := []struct {
		name       string
		tables     []*dataset.Table
		credential query.Credential
		config     query.BackendConfig
		code       string
	}{
		{name: "no tables", tables: nil, credential: testCredential, config: testConfig, code: errors.CodeNoDatasets},
		{name: "no credential", tables: oneTable(), credential: query.Credential{Source: query.CredentialNone}, config: testConfig, code: errors.CodeMissingCredential},
		{name: "blank credential", tables: oneTable(), credential: query.Credential{Token: "  "}, config: testConfig, code: errors.CodeMissingCredential},
		{name: "unknown format", tables: oneTable(), credential: testCredential, config: query.BackendConfig{ResponseFormat: "html5"}, code: errors.CodeConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewQuerySession(context.Background(), tt.tables, tt.credential, tt.config, factoryFor(engine))
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
	engine.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything, mock.Anything)
}

func TestNewQuerySessionKeepsFactoryErrorCode(t *testing.T) {
	factory := func(ctx context.Context, config query.BackendConfig, credential query.Credential) (ports.QueryEngine, error) {
		return nil, errors.ConfigInvalid("unsupported LLM backend: cohere")
	}

	_, err := NewQuerySession(context.Background(), oneTable(), testCredential, testConfig, factory)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestExecuteRendersAnswer(t *testing.T) {
	tables := oneTable()
	engine := &MockQueryEngine{}
	engine.On("Chat", mock.Anything, "Who is listed?", tables).
		Return(&query.Answer{Kind: query.KindText, Text: "Only **Alice**."}, nil).Once()

	session, err := NewQuerySession(context.Background(), tables, testCredential, testConfig, factoryFor(engine))
	require.NoError(t, err)
	assert.Equal(t, tables, session.Tables())

	answer, err := session.Execute(context.Background(), "  Who is listed?  ")
	require.NoError(t, err)

	assert.Equal(t, "Only **Alice**.", answer.Text)
	assert.Contains(t, answer.HTML, "<strong>Alice</strong>")
	assert.NotZero(t, answer.Duration)
	engine.AssertExpectations(t)
}

func TestExecuteRejectsEmptyQuestion(t *testing.T) {
	engine := &MockQueryEngine{}
	session, err := NewQuerySession(context.Background(), oneTable(), testCredential, testConfig, factoryFor(engine))
	require.NoError(t, err)

	_, err = session.Execute(context.Background(), " \n\t")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	engine.AssertNotCalled(t, "Chat", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecuteWrapsBackendErrorWithoutRetry(t *testing.T) {
	engine := &MockQueryEngine{}
	engine.On("Chat", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("openai http 401: invalid key"))

	session, err := NewQuerySession(context.Background(), oneTable(), testCredential, testConfig, factoryFor(engine))
	require.NoError(t, err)

	_, err = session.Execute(context.Background(), "How many rows?")
	require.Error(t, err)
	assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))
	assert.Contains(t, err.Error(), "openai http 401")
	engine.AssertNumberOfCalls(t, "Chat", 1)
}
