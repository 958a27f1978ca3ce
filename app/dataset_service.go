package app

import (
	"context"
	"fmt"
	"log/slog"

	"datagent/domain/core"
	"datagent/domain/datareadiness/ingestion"
	"datagent/domain/dataset"
	"datagent/internal"
	"datagent/ports"
)

// Ingester turns a stored upload into an ingestion report
type Ingester interface {
	Process(ctx context.Context, path string) (*ingestion.IngestionReport, error)
}

var _ Ingester = (*IngestionPipeline)(nil)

// UploadResult is an ingestion report plus the id of the stored dataset
type UploadResult struct {
	*ingestion.IngestionReport
	DatasetID core.DatasetID `json:"dataset_id"`
}

// DatasetService ingests uploads and serves their query history
type DatasetService struct {
	ingester Ingester
	repo     ports.DatasetRepository
	logger   *slog.Logger
}

// NewDatasetService creates a dataset service
func NewDatasetService(ingester Ingester, repo ports.DatasetRepository, logger *slog.Logger) *DatasetService {
	return &DatasetService{ingester: ingester, repo: repo, logger: internal.LoggerOr(logger)}
}

// Upload ingests the file at path and records a dataset summarizing its first
// accepted sheet. Ingestion failures are returned as *ingestion.Error.
func (s *DatasetService) Upload(ctx context.Context, filename, path string) (*UploadResult, error) {
	report, err := s.ingester.Process(ctx, path)
	if err != nil {
		return nil, err
	}

	ds, ok := dataset.FromReport(filename, report)
	if !ok {
		return nil, ingestion.NewError(ingestion.ErrNoValidSheets, "No valid sheets found in file")
	}
	if err := s.repo.Create(ctx, ds); err != nil {
		return nil, fmt.Errorf("failed to store dataset: %w", err)
	}

	s.logger.Info("dataset created",
		slog.String("dataset_id", ds.ID.String()),
		slog.String("filename", filename),
		slog.Int("rows", ds.RowCount),
		slog.Int("columns", ds.ColumnCount))

	return &UploadResult{IngestionReport: report, DatasetID: ds.ID}, nil
}

// History returns the dataset's queries, newest first
func (s *DatasetService) History(ctx context.Context, id core.DatasetID) ([]*dataset.QueryRecord, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.History(ctx, id)
}

// Insights summarizes how the dataset has been queried
func (s *DatasetService) Insights(ctx context.Context, id core.DatasetID) (*dataset.UsageInsights, error) {
	ds, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	queries, err := s.repo.ListQueries(ctx, id)
	if err != nil {
		return nil, err
	}
	return dataset.BuildInsights(ds, queries), nil
}
