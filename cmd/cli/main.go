package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"datagent/adapters/excel"
	"datagent/adapters/llm"
	"datagent/app"
	"datagent/domain/datareadiness/ingestion"
	"datagent/internal"
	"datagent/internal/config"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "datagent",
		Short:        "Ingest spreadsheets and ask questions about them",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newIngestCmd(),
		newQueryCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// fileResult pairs an input path with its report or failure
type fileResult struct {
	File   string      `json:"file"`
	Result interface{} `json:"result"`
}

func newIngestCmd() *cobra.Command {
	var concurrency int
	var pretty bool

	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Validate and profile one or more workbooks",
		Long: `Run the ingestion pipeline over each file and print one JSON document per file.

Example: datagent ingest sales.xlsx costs.csv --concurrency 4 --pretty`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level), cmd.ErrOrStderr())
			pipeline := app.NewIngestionPipeline(excel.NewOpener(), cfg.Ingestion, nil, logger)
			return runIngest(cmd.Context(), pipeline, args, concurrency, pretty, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 2, "Number of files processed in parallel")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	return cmd
}

// runIngest processes files concurrently and writes results in input order.
// It returns an error when any file failed to ingest.
func runIngest(ctx context.Context, ingester app.Ingester, files []string, concurrency int, pretty bool, w io.Writer) error {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]fileResult, len(files))
	failed := make([]bool, len(files))

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, file := range files {
		g.Go(func() error {
			report, err := ingester.Process(ctx, file)
			if err != nil {
				results[i] = fileResult{File: file, Result: ingestion.FailureFrom(err)}
				failed[i] = true
				return nil
			}
			results[i] = fileResult{File: file, Result: report}
			return nil
		})
	}
	_ = g.Wait()

	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	count := 0
	for i, res := range results {
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		if failed[i] {
			count++
		}
	}
	if count > 0 {
		return fmt.Errorf("%d of %d files failed ingestion", count, len(files))
	}
	return nil
}

func newQueryCmd() *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "query [file] [question]",
		Short: "Ask the analysis agent a question about a workbook",
		Long: `Ingest the file, then send its primary sheet and the question to the LLM.

Example: datagent query sales.xlsx "Which region sold the most?"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireAI(); err != nil {
				return err
			}
			logger := internal.NewLogger(internal.ParseLogLevel(cfg.Logging.Level), cmd.ErrOrStderr())

			client, err := llm.NewOpenAIClient(cfg.AI)
			if err != nil {
				return err
			}
			pipeline := app.NewIngestionPipeline(excel.NewOpener(), cfg.Ingestion, nil, logger)
			agent := llm.NewAgent(client, logger)
			return runQuery(cmd.Context(), pipeline, agent, args[0], args[1], pretty, cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	return cmd
}

func runQuery(ctx context.Context, ingester app.Ingester, agent app.QueryAgent, file, question string, pretty bool, w io.Writer, logger *slog.Logger) error {
	report, err := ingester.Process(ctx, file)
	if err != nil {
		return err
	}
	sheet, _, table, ok := report.Primary()
	if !ok {
		return fmt.Errorf("no valid sheets found in %s", file)
	}
	logger.Info("querying sheet", slog.String("sheet", sheet), slog.Int("rows", table.Rows))

	analysis, err := agent.Analyze(ctx, table, question)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(analysis)
}
