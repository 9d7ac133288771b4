package llm

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"contractbot/ai"
	"contractbot/domain/dataset"
	"contractbot/domain/query"
	"contractbot/internal"
	"contractbot/ports"
)

const promptPreviewLength = 400

// DataframeEngine answers questions by sending the tables and the question
// to an LLM and parsing the JSON answer envelope it returns
type DataframeEngine struct {
	client  ports.LLMClient
	prompts *ai.PromptManager
	config  query.BackendConfig
	logger  *internal.Logger
}

// NewDataframeEngine wraps an LLM client
func NewDataframeEngine(client ports.LLMClient, config query.BackendConfig) *DataframeEngine {
	return &DataframeEngine{
		client:  client,
		prompts: ai.NewPromptManager(config.PromptsDir),
		config:  config,
		logger:  internal.DefaultLogger.With("DataframeEngine"),
	}
}

// NewQueryEngine builds the client for the configured backend and wraps it
func NewQueryEngine(ctx context.Context, config query.BackendConfig, credential query.Credential) (ports.QueryEngine, error) {
	client, err := NewLLMClient(ctx, ConfigFromBackend(config, credential))
	if err != nil {
		return nil, err
	}
	return NewDataframeEngine(client, config), nil
}

// Chat compiles the prompt, calls the model once and parses the reply
func (e *DataframeEngine) Chat(ctx context.Context, question string, tables []*dataset.Table) (*query.Answer, error) {
	system, err := e.prompts.LoadPrompt(ai.PromptDataframeSystem)
	if err != nil {
		return nil, err
	}

	datasetContext := ai.CompileDatasetContext(tables, ai.ContextOptions{MaxRows: e.config.MaxPromptRows})
	prompt, err := e.prompts.RenderPrompt(ai.PromptDataframeQuery, map[string]string{
		"TABLE_COUNT":     strconv.Itoa(len(tables)),
		"DATASET_CONTEXT": datasetContext,
		"QUESTION":        question,
	})
	if err != nil {
		return nil, err
	}

	if e.config.Verbose {
		e.logger.Info("prompt compiled: %d tables, %d bytes (system %d bytes)", len(tables), len(prompt), len(system))
		e.logger.Info("prompt preview: %s", preview(prompt))
	}

	start := time.Now()
	resp, err := e.client.ChatCompletion(ctx, ports.ChatRequest{
		Model:     e.config.Model,
		System:    system,
		Prompt:    prompt,
		MaxTokens: e.config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%s chat completion: %w", e.client.Provider(), err)
	}
	elapsed := time.Since(start)

	if e.config.Verbose {
		e.logger.Info("%s replied in %.2fms: %s", e.client.Provider(), float64(elapsed.Nanoseconds())/1e6, preview(resp.Content))
		if resp.Usage != nil {
			e.logger.Info("usage: prompt=%d completion=%d total=%d",
				resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)
		}
	}

	answer := ai.ParseAnswer(resp.Content)
	answer.Model = e.config.Model
	answer.Duration = elapsed
	if resp.Usage != nil {
		answer.Usage = &query.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return answer, nil
}

func preview(s string) string {
	return truncate(s, promptPreviewLength)
}
