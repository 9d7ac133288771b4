package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"contractbot/adapters/excel"
	"contractbot/adapters/llm"
	"contractbot/app"
	"contractbot/domain/dataset"
	"contractbot/domain/query"
	"contractbot/internal"
	"contractbot/internal/config"
	"contractbot/internal/errors"
	"contractbot/internal/secrets"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using system environment variables")
	}

	rootCmd := &cobra.Command{
		Use:   "contractbot-cli",
		Short: "Ask questions about spreadsheets from the command line",
	}

	rootCmd.AddCommand(
		newAskCmd(),
		newPreviewCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type askOptions struct {
	files    []string
	question string
	backend  string
	model    string
	format   string
	verbose  bool
	asJSON   bool
}

func newAskCmd() *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Load spreadsheets and answer one question about them",
		Long: `Load one or more .csv/.xlsx files (or the example dataset when none is
given) and ask the configured LLM backend one question.

The API key is read from OPENAI_API_KEY (GEMINI_API_KEY for --backend gemini)
or from secrets.toml.

Example: contractbot-cli ask --file contracts.xlsx --question "Which contract has the highest value?"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := loadConfig(opts)
			if err != nil {
				return err
			}
			return runAsk(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), appConfig, opts, llm.NewQueryEngine)
		},
	}

	cmd.Flags().StringArrayVar(&opts.files, "file", nil, "Spreadsheet to load (repeatable)")
	cmd.Flags().StringVarP(&opts.question, "question", "q", "", "Question to ask")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "LLM backend: openai|gemini (default from LLM_BACKEND)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model name (default from LLM_MODEL)")
	cmd.Flags().StringVar(&opts.format, "format", string(query.FormatText), "Response format: text|markdown")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Log the compiled prompt and raw model reply")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the answer as JSON")
	_ = cmd.MarkFlagRequired("question")

	return cmd
}

func newPreviewCmd() *cobra.Command {
	var files []string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show column types, row counts and issues for spreadsheets",
		Long: `Parse spreadsheets exactly as the web UI does and describe the result.
Without --file the example dataset is described.

Example: contractbot-cli preview --file a.csv --file b.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := config.Load()
			if err != nil {
				return err
			}
			internal.SetDefaultLevel(appConfig.LogLevel)
			return runPreview(cmd.Context(), cmd.OutOrStdout(), appConfig, files)
		},
	}

	cmd.Flags().StringArrayVar(&files, "file", nil, "Spreadsheet to load (repeatable)")

	return cmd
}

// loadConfig loads the environment configuration and applies command line
// overrides on top of it
func loadConfig(opts askOptions) (*config.Config, error) {
	appConfig, err := config.Load()
	if err != nil {
		return nil, err
	}
	internal.SetDefaultLevel(appConfig.LogLevel)
	if err := applyOverrides(appConfig, opts); err != nil {
		return nil, err
	}
	return appConfig, nil
}

func applyOverrides(appConfig *config.Config, opts askOptions) error {
	if opts.backend != "" {
		backend := query.Backend(strings.ToLower(strings.TrimSpace(opts.backend)))
		switch backend {
		case query.BackendOpenAI, query.BackendGemini:
		default:
			return errors.ConfigInvalid("unsupported --backend: " + opts.backend)
		}
		if backend != appConfig.AI.Backend {
			appConfig.AI.Backend = backend
			appConfig.Secrets.EnvKey = config.EnvKeyFor(backend)
			if opts.model == "" {
				appConfig.AI.Model = config.DefaultModelFor(backend)
			}
		}
	}
	if opts.model != "" {
		appConfig.AI.Model = opts.model
	}
	if opts.format != "" {
		format := query.ResponseFormat(strings.ToLower(opts.format))
		switch format {
		case query.FormatText, query.FormatMarkdown:
		default:
			return errors.ConfigInvalid("unsupported --format: " + opts.format)
		}
		appConfig.AI.ResponseFormat = format
	}
	appConfig.AI.Verbose = opts.verbose
	return nil
}

func readUploads(paths []string) ([]dataset.Upload, error) {
	uploads := make([]dataset.Upload, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("cannot read %s: %v", path, err))
		}
		uploads = append(uploads, dataset.Upload{Filename: filepath.Base(path), Content: content})
	}
	return uploads, nil
}

func ingest(ctx context.Context, appConfig *config.Config, paths []string) (*dataset.IngestResult, error) {
	uploads, err := readUploads(paths)
	if err != nil {
		return nil, err
	}
	reader := excel.NewDataReader(excel.DefaultReaderConfig())
	return app.NewIngestService(reader, appConfig.Data, appConfig.Server.MaxUploadBytes).Ingest(ctx, uploads)
}

func runAsk(ctx context.Context, stdout, stderr io.Writer, appConfig *config.Config, opts askOptions, engines app.EngineFactory) error {
	result, err := ingest(ctx, appConfig, opts.files)
	if err != nil {
		return err
	}
	for _, fe := range result.FileErrors {
		fmt.Fprintf(stderr, "⚠️  %s\n", fe.Error())
	}
	if result.UsedFallback {
		fmt.Fprintf(stderr, "No files given, using example dataset %s\n", appConfig.Data.FallbackFile)
	}

	credential := secrets.NewResolver(appConfig.Secrets).Resolve()
	session, err := app.NewQuerySession(ctx, result.Tables, credential, appConfig.BackendConfig(), engines)
	if err != nil {
		return err
	}

	startTime := time.Now()
	answer, err := session.Execute(ctx, opts.question)
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}

	// the terminal gets the markdown source, never rendered HTML
	fmt.Fprintln(stdout, answer.Text)
	fmt.Fprintf(stderr, "Answered by %s in %v\n", answer.Model, time.Since(startTime).Round(time.Millisecond))
	return nil
}

func runPreview(ctx context.Context, stdout io.Writer, appConfig *config.Config, paths []string) error {
	result, err := ingest(ctx, appConfig, paths)
	if err != nil {
		return err
	}

	for _, table := range result.Tables {
		fmt.Fprintf(stdout, "📊 %s", table.Name)
		if table.Sheet != "" {
			fmt.Fprintf(stdout, " (sheet %s)", table.Sheet)
		}
		if table.Source == dataset.SourceFallback {
			fmt.Fprint(stdout, " [example data]")
		}
		fmt.Fprintf(stdout, ": %d rows, %d columns\n", table.RowCount(), len(table.Columns))

		for i, col := range table.Columns {
			fmt.Fprintf(stdout, "   %-24s %-8s nulls=%d\n", col.Name, col.Type, table.NullCount(i))
		}
		if len(table.Issues) > 0 {
			fmt.Fprintf(stdout, "   %d issues:\n", len(table.Issues))
			for _, issue := range table.Issues {
				fmt.Fprintf(stdout, "   - %s\n", issue.String())
			}
		}
	}

	for _, fe := range result.FileErrors {
		fmt.Fprintf(stdout, "❌ %s [%s]\n", fe.Error(), strings.ToLower(errors.GetCode(fe.Err)))
	}
	return nil
}
