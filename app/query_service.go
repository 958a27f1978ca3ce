package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"datagent/adapters/llm"
	"datagent/domain/chart"
	"datagent/domain/core"
	"datagent/domain/datareadiness/ingestion"
	"datagent/domain/dataset"
	"datagent/internal"
	"datagent/internal/metrics"
	"datagent/ports"
)

// QueryAgent answers a question about a table
type QueryAgent interface {
	Analyze(ctx context.Context, table *ingestion.CleanedTable, query string) (*llm.Analysis, error)
}

var _ QueryAgent = (*llm.Agent)(nil)

// QueryContext describes the data a query was answered from
type QueryContext struct {
	Sheet       string   `json:"sheet"`
	TotalRows   int      `json:"total_rows"`
	ColumnsUsed []string `json:"columns_used"`
}

// QueryResponse is the answer to a natural language query
type QueryResponse struct {
	Success        bool                  `json:"success"`
	Analysis       string                `json:"analysis"`
	AnalysisHTML   string                `json:"analysis_html"`
	Metrics        json.RawMessage       `json:"metrics"`
	Visualizations []chart.Result        `json:"visualizations"`
	QueryContext   QueryContext          `json:"query_context"`
	SimilarQueries []dataset.ScoredQuery `json:"similar_queries,omitempty"`
}

// QueryService answers questions about stored datasets and keeps the query log
type QueryService struct {
	ingester Ingester
	repo     ports.DatasetRepository
	agent    QueryAgent
	charts   ports.ChartRenderer
	metrics  *metrics.Recorder
	logger   *slog.Logger
}

// NewQueryService creates a query service. recorder may be nil.
func NewQueryService(ingester Ingester, repo ports.DatasetRepository, agent QueryAgent, charts ports.ChartRenderer, recorder *metrics.Recorder, logger *slog.Logger) *QueryService {
	return &QueryService{
		ingester: ingester,
		repo:     repo,
		agent:    agent,
		charts:   charts,
		metrics:  recorder,
		logger:   internal.LoggerOr(logger),
	}
}

// Process answers query against the dataset's file. Every attempt on an
// existing dataset is logged, failures included.
func (s *QueryService) Process(ctx context.Context, datasetID core.DatasetID, query string) (*QueryResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, core.NewValidationError("query", "must not be empty")
	}

	ds, err := s.repo.GetByID(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.answer(ctx, ds, query)
	elapsed := core.Since(start)

	var result json.RawMessage
	if err == nil {
		var marshalErr error
		if result, marshalErr = json.Marshal(resp); marshalErr != nil {
			s.logger.Warn("failed to encode query result", slog.String("dataset_id", ds.ID.String()), slog.String("error", marshalErr.Error()))
			result = nil
		}
	}
	record := dataset.NewQueryRecord(ds.ID, query, elapsed, result, err)
	if logErr := s.repo.LogQuery(ctx, record); logErr != nil {
		s.logger.Warn("failed to log query", slog.String("dataset_id", ds.ID.String()), slog.String("error", logErr.Error()))
	}
	s.metrics.QueryProcessed(string(record.Success))

	if err != nil {
		s.logger.Info("query failed",
			slog.String("dataset_id", ds.ID.String()),
			slog.Float64("execution_time", float64(elapsed)),
			slog.String("error", err.Error()))
		return nil, err
	}

	resp.SimilarQueries = s.similar(ctx, query, record.ID)
	s.logger.Info("query answered",
		slog.String("dataset_id", ds.ID.String()),
		slog.Float64("execution_time", float64(elapsed)),
		slog.Int("visualizations", len(resp.Visualizations)))
	return resp, nil
}

func (s *QueryService) answer(ctx context.Context, ds *dataset.Dataset, query string) (*QueryResponse, error) {
	report, err := s.ingester.Process(ctx, ds.FilePath)
	if err != nil {
		return nil, err
	}
	sheet, _, table, ok := report.Primary()
	if !ok || table == nil {
		return nil, core.ErrInsufficientData
	}

	analysis, err := s.agent.Analyze(ctx, table, query)
	if err != nil {
		return nil, err
	}

	relevant := llm.RelevantColumns(table, query)
	return &QueryResponse{
		Success:        true,
		Analysis:       analysis.Answer,
		AnalysisHTML:   renderMarkdown(analysis.Answer),
		Metrics:        analysis.Metrics,
		Visualizations: s.visualize(table, analysis.VisualizationSuggestions, relevant),
		QueryContext: QueryContext{
			Sheet:       sheet,
			TotalRows:   table.Rows,
			ColumnsUsed: relevant,
		},
	}, nil
}

// visualize renders the agent's suggestions, falling back to heuristic
// suggestions when none of them can be drawn
func (s *QueryService) visualize(table *ingestion.CleanedTable, suggested []chart.Suggestion, relevant []string) []chart.Result {
	out := s.render(table, suggested)
	if len(out) > 0 {
		return out
	}

	columns := relevant
	if len(columns) == 0 {
		columns = defaultChartColumns(table)
	}
	return s.render(table, s.charts.Suggest(table, columns))
}

func (s *QueryService) render(table *ingestion.CleanedTable, suggestions []chart.Suggestion) []chart.Result {
	out := []chart.Result{}
	for _, sg := range suggestions {
		res := s.charts.Render(table, sg.Spec())
		if res.Success {
			out = append(out, res)
		}
	}
	return out
}

// defaultChartColumns picks the first two numeric columns and the first text column
func defaultChartColumns(table *ingestion.CleanedTable) []string {
	var numeric, text []string
	for _, c := range table.Columns {
		switch {
		case c.Type.IsNumeric() && len(numeric) < 2:
			numeric = append(numeric, c.Name)
		case c.Type == ingestion.ColumnTypeText && len(text) < 1:
			text = append(text, c.Name)
		}
	}
	return append(numeric, text...)
}

// similar never fails the query
func (s *QueryService) similar(ctx context.Context, query string, exclude core.QueryID) []dataset.ScoredQuery {
	recent, err := s.repo.RecentSuccessful(ctx, dataset.SimilarityWindow)
	if err != nil {
		s.logger.Warn("failed to load recent queries", slog.String("error", err.Error()))
		return nil
	}
	candidates := make([]*dataset.QueryRecord, 0, len(recent))
	for _, q := range recent {
		if q.ID != exclude {
			candidates = append(candidates, q)
		}
	}
	return dataset.SimilarQueries(query, candidates)
}
