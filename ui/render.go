package ui

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"strings"

	"contractbot/app"
	"contractbot/domain/core"
	"contractbot/domain/dataset"
	"contractbot/domain/query"
	"contractbot/internal"
	"contractbot/internal/config"
	"contractbot/internal/errors"
	"contractbot/internal/secrets"
)

const (
	pageTemplate      = "index.html"
	workspaceTemplate = "workspace"
)

// Dependencies are the services a render needs. All are safe for concurrent use.
type Dependencies struct {
	Config  *config.Config
	Ingest  *app.IngestService
	Secrets *secrets.Resolver
	Engines app.EngineFactory
}

// TableView is one loaded table as shown in the preview grid
type TableView struct {
	Name      string
	Sheet     string
	Source    dataset.Source
	Columns   []dataset.Column
	Rows      [][]string
	TotalRows int
	Issues    []dataset.ParseIssue
}

// Truncated reports whether only part of the table is shown
func (t TableView) Truncated() bool {
	return len(t.Rows) < t.TotalRows
}

// FileErrorView is an upload that could not be loaded
type FileErrorView struct {
	Filename string `json:"filename"`
	Code     string `json:"code"`
	Message  string `json:"error"`
}

// RenderState is everything one page render shows. It is built fresh for
// every request from the submitted FormSnapshot.
type RenderState struct {
	RenderID     core.RenderID
	APIKey       string
	Credential   query.CredentialSource
	Question     string
	Tables       []TableView
	FileErrors   []FileErrorView
	UsedFallback bool
	DataErr      error
	Executed     bool
	Answer       *query.Answer
	QueryErr     error
	Backend      query.Backend
	Model        string
	MaxUpload    int64
}

// DataError is the dataset loading failure, if any
func (s *RenderState) DataError() *ErrorView {
	return newErrorView(s.DataErr)
}

// QueryError is the session or execution failure, if any
func (s *RenderState) QueryError() *ErrorView {
	return newErrorView(s.QueryErr)
}

// AnswerHTML returns the formatted answer. Markdown output is already
// sanitized, text output is escaped.
func (s *RenderState) AnswerHTML() template.HTML {
	if s.Answer == nil {
		return ""
	}
	if s.Answer.HTML != "" {
		return template.HTML(s.Answer.HTML)
	}
	return template.HTML("<pre class=\"answer-text\">" + template.HTMLEscapeString(s.Answer.Text) + "</pre>")
}

// Renderer computes page state and writes HTML. It is shared by the gin
// server and the chi app.
type Renderer struct {
	deps      Dependencies
	templates *template.Template
	logger    *internal.Logger
}

// NewRenderer parses the embedded templates
func NewRenderer(deps Dependencies) (*Renderer, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Renderer{
		deps:      deps,
		templates: templates,
		logger:    internal.DefaultLogger.With("Renderer"),
	}, nil
}

// MaxUploadBytes is the per-file upload limit, zero when unlimited
func (r *Renderer) MaxUploadBytes() int64 {
	return r.deps.Config.Server.MaxUploadBytes
}

// InitialSnapshot is the form state of a first visit
func (r *Renderer) InitialSnapshot() FormSnapshot {
	return FormSnapshot{Question: config.DefaultQuestion}
}

// Render recomputes the page from the snapshot: credential, datasets and, when
// the trigger was pressed with a question, one answer
func (r *Renderer) Render(ctx context.Context, snap FormSnapshot) *RenderState {
	state := &RenderState{
		RenderID:  core.NewRenderID(),
		Question:  snap.Question,
		Backend:   r.deps.Config.AI.Backend,
		Model:     r.deps.Config.AI.Model,
		MaxUpload: r.deps.Config.Server.MaxUploadBytes,
	}

	credential := secrets.Override(r.deps.Secrets.Resolve(), snap.APIKey)
	state.APIKey = credential.Token
	state.Credential = credential.Source

	result, err := r.deps.Ingest.Ingest(ctx, snap.Uploads)
	if err != nil {
		r.logger.Error("render %s: %v", state.RenderID.Short(), err)
		state.DataErr = err
		result = &dataset.IngestResult{}
	}
	state.UsedFallback = result.UsedFallback
	state.Tables = r.tableViews(result.Tables)
	state.FileErrors = fileErrorViews(result.FileErrors)

	if snap.Execute() && strings.TrimSpace(snap.Question) != "" {
		state.Executed = true
		state.Answer, state.QueryErr = r.execute(ctx, result.Tables, credential, snap.Question)
	}

	r.logger.Debug("render %s: %d tables, %d file errors, executed=%t",
		state.RenderID.Short(), len(state.Tables), len(state.FileErrors), state.Executed)
	return state
}

func (r *Renderer) execute(ctx context.Context, tables []*dataset.Table, credential query.Credential, question string) (*query.Answer, error) {
	session, err := app.NewQuerySession(ctx, tables, credential, r.deps.Config.BackendConfig(), r.deps.Engines)
	if err != nil {
		return nil, err
	}
	return session.Execute(ctx, question)
}

func (r *Renderer) tableViews(tables []*dataset.Table) []TableView {
	views := make([]TableView, 0, len(tables))
	for _, t := range tables {
		views = append(views, TableView{
			Name:      t.Name,
			Sheet:     t.Sheet,
			Source:    t.Source,
			Columns:   t.Columns,
			Rows:      t.StringRows(r.deps.Config.Server.PreviewRows),
			TotalRows: t.RowCount(),
			Issues:    t.Issues,
		})
	}
	return views
}

func fileErrorViews(fileErrors []dataset.FileError) []FileErrorView {
	views := make([]FileErrorView, 0, len(fileErrors))
	for _, fe := range fileErrors {
		view := newErrorView(fe.Err)
		views = append(views, FileErrorView{Filename: fe.Filename, Code: view.Code, Message: view.Message})
	}
	return views
}

// WriteHTML renders the full page, or only the workspace fragment, into w.
// The page is rendered to a buffer first so a template failure never leaves
// a half-written response.
func (r *Renderer) WriteHTML(w io.Writer, state *RenderState, fragment bool) error {
	name := pageTemplate
	if fragment {
		name = workspaceTemplate
	}

	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, state); err != nil {
		return fmt.Errorf("template %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// datasetInfo is the JSON description of a loaded table
type datasetInfo struct {
	*dataset.Table
	RowCount int `json:"row_count"`
}

func datasetInfos(result *dataset.IngestResult) []datasetInfo {
	if result == nil {
		return []datasetInfo{}
	}
	infos := make([]datasetInfo, 0, len(result.Tables))
	for _, t := range result.Tables {
		infos = append(infos, datasetInfo{Table: t, RowCount: t.RowCount()})
	}
	return infos
}

// DatasetsResult is the JSON body describing one ingest pass
type DatasetsResult struct {
	Datasets     []datasetInfo   `json:"datasets"`
	FileErrors   []FileErrorView `json:"file_errors"`
	UsedFallback bool            `json:"used_fallback"`
}

// QueryResult is the JSON body of a scripted query
type QueryResult struct {
	DatasetsResult
	Answer *query.Answer `json:"answer"`
}

// Preview ingests the snapshot's uploads without running a query
func (r *Renderer) Preview(ctx context.Context, snap FormSnapshot) (*DatasetsResult, error) {
	result, err := r.deps.Ingest.Ingest(ctx, snap.Uploads)
	if err != nil {
		return nil, err
	}
	return newDatasetsResult(result), nil
}

// Query runs one question against the snapshot's datasets. The datasets are
// returned even when the question fails.
func (r *Renderer) Query(ctx context.Context, snap FormSnapshot) (*QueryResult, error) {
	if strings.TrimSpace(snap.Question) == "" {
		return nil, errors.InvalidInput("question is required")
	}

	credential := secrets.Override(r.deps.Secrets.Resolve(), snap.APIKey)
	r.logger.Info("query with credential from %s", credential.Source)

	result, err := r.deps.Ingest.Ingest(ctx, snap.Uploads)
	if err != nil {
		return nil, err
	}

	out := &QueryResult{DatasetsResult: *newDatasetsResult(result)}
	out.Answer, err = r.execute(ctx, result.Tables, credential, snap.Question)
	return out, err
}

func newDatasetsResult(result *dataset.IngestResult) *DatasetsResult {
	return &DatasetsResult{
		Datasets:     datasetInfos(result),
		FileErrors:   fileErrorViews(result.FileErrors),
		UsedFallback: result.UsedFallback,
	}
}
