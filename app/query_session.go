package app

import (
	"context"
	"strings"
	"time"

	"contractbot/domain/core"
	"contractbot/domain/dataset"
	"contractbot/domain/query"
	"contractbot/internal"
	"contractbot/internal/errors"
	"contractbot/ports"
)

// EngineFactory builds the query engine for a backend and credential
type EngineFactory func(ctx context.Context, config query.BackendConfig, credential query.Credential) (ports.QueryEngine, error)

// QuerySession binds loaded tables and a credential to one backend. It is
// built per render and never persisted.
type QuerySession struct {
	ID         core.SessionID
	tables     []*dataset.Table
	credential query.Credential
	config     query.BackendConfig
	engine     ports.QueryEngine
	formatter  ResponseFormatter
	logger     *internal.Logger
}

// NewQuerySession checks the preconditions and builds the engine. It does not
// contact the backend.
func NewQuerySession(ctx context.Context, tables []*dataset.Table, credential query.Credential, config query.BackendConfig, factory EngineFactory) (*QuerySession, error) {
	if len(tables) == 0 {
		return nil, errors.NoDatasets("no datasets are loaded, upload a .csv or .xlsx file")
	}
	if credential.IsEmpty() {
		return nil, errors.MissingCredential("an API key is required, enter it in the sidebar or set it in the environment")
	}

	formatter, err := NewResponseFormatter(config.ResponseFormat)
	if err != nil {
		return nil, err
	}

	engine, err := factory(ctx, config, credential)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build query engine")
	}

	session := &QuerySession{
		ID:         core.NewSessionID(),
		tables:     tables,
		credential: credential,
		config:     config,
		engine:     engine,
		formatter:  formatter,
		logger:     internal.DefaultLogger.With("QuerySession"),
	}
	session.logger.Debug("session %s: %d tables, backend=%s model=%s credential=%s",
		session.ID.Short(), len(tables), config.Backend, config.Model, credential.Source)
	return session, nil
}

// Tables returns the loaded tables in upload order
func (s *QuerySession) Tables() []*dataset.Table {
	return s.tables
}

// Config returns the backend configuration
func (s *QuerySession) Config() query.BackendConfig {
	return s.config
}

// Execute asks one question. Backend failures are returned, never retried.
func (s *QuerySession) Execute(ctx context.Context, question string) (*query.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.InvalidInput("question is empty")
	}

	startTime := time.Now()
	answer, err := s.engine.Chat(ctx, question, s.tables)
	if err != nil {
		s.logger.Error("session %s: query failed after %.2fms: %v",
			s.ID.Short(), float64(time.Since(startTime).Nanoseconds())/1e6, err)
		service := string(s.config.Backend)
		if service == "" {
			service = "llm"
		}
		return nil, errors.ExternalServiceError(service, err)
	}

	answer = s.formatter.Format(answer)
	if answer.Duration == 0 {
		answer.Duration = time.Since(startTime)
	}

	s.logger.Info("session %s: answered %s in %.2fms", s.ID.Short(), answer.Kind, float64(answer.Duration.Nanoseconds())/1e6)
	return answer, nil
}
