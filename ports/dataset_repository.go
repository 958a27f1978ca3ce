package ports

import (
	"context"

	"datagent/domain/core"
	"datagent/domain/dataset"
)

// DatasetRepository defines the interface for dataset and query log storage
type DatasetRepository interface {
	Create(ctx context.Context, ds *dataset.Dataset) error
	// GetByID returns core.ErrDatasetNotFound when no dataset has the id
	GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error)

	// LogQuery returns core.ErrDatasetNotFound when the dataset does not exist
	LogQuery(ctx context.Context, q *dataset.QueryRecord) error
	// History returns the dataset's queries, newest first
	History(ctx context.Context, datasetID core.DatasetID) ([]*dataset.QueryRecord, error)
	// RecentSuccessful returns successful queries across all datasets, newest first
	RecentSuccessful(ctx context.Context, limit int) ([]*dataset.QueryRecord, error)
	// ListQueries returns the dataset's queries, oldest first
	ListQueries(ctx context.Context, datasetID core.DatasetID) ([]*dataset.QueryRecord, error)
}
