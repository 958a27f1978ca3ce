package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"datagent/domain/core"
	"datagent/domain/dataset"
	"datagent/ports"
)

const (
	pqForeignKeyViolation = "23503"
	pqInvalidText         = "22P02"
)

// datasetRepository implements ports.DatasetRepository on PostgreSQL
type datasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sqlx.DB) ports.DatasetRepository {
	return &datasetRepository{db: db}
}

type datasetRow struct {
	ID          string         `db:"id"`
	Filename    string         `db:"filename"`
	UploadTime  time.Time      `db:"upload_time"`
	FilePath    string         `db:"file_path"`
	RowCount    int            `db:"row_count"`
	ColumnCount int            `db:"column_count"`
	DataQuality types.JSONText `db:"data_quality"`
	ColumnInfo  types.JSONText `db:"column_info"`
}

func (r datasetRow) toDomain() (*dataset.Dataset, error) {
	ds := &dataset.Dataset{
		ID:          core.DatasetID(r.ID),
		Filename:    r.Filename,
		UploadTime:  core.NewTimestamp(r.UploadTime),
		FilePath:    r.FilePath,
		RowCount:    r.RowCount,
		ColumnCount: r.ColumnCount,
	}
	if err := r.DataQuality.Unmarshal(&ds.DataQuality); err != nil {
		return nil, fmt.Errorf("failed to unmarshal data_quality: %w", err)
	}
	if err := r.ColumnInfo.Unmarshal(&ds.ColumnInfo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal column_info: %w", err)
	}
	return ds, nil
}

type queryRow struct {
	ID            string             `db:"id"`
	DatasetID     string             `db:"dataset_id"`
	QueryText     string             `db:"query_text"`
	Timestamp     time.Time          `db:"timestamp"`
	ExecutionTime float64            `db:"execution_time"`
	Success       string             `db:"success"`
	ErrorMessage  sql.NullString     `db:"error_message"`
	Result        types.NullJSONText `db:"result"`
}

func (r queryRow) toDomain() *dataset.QueryRecord {
	q := &dataset.QueryRecord{
		ID:            core.QueryID(r.ID),
		DatasetID:     core.DatasetID(r.DatasetID),
		QueryText:     r.QueryText,
		Timestamp:     core.NewTimestamp(r.Timestamp),
		ExecutionTime: core.Elapsed(r.ExecutionTime),
		Success:       dataset.QueryStatus(r.Success),
		ErrorMessage:  r.ErrorMessage.String,
	}
	if r.Result.Valid {
		q.Result = json.RawMessage(r.Result.JSONText)
	}
	return q
}

const queryColumns = `id, dataset_id, query_text, timestamp, execution_time, success, error_message, result`

// Create inserts a new dataset
func (r *datasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	quality, err := json.Marshal(ds.DataQuality)
	if err != nil {
		return fmt.Errorf("failed to marshal data_quality: %w", err)
	}
	columns, err := json.Marshal(ds.ColumnInfo)
	if err != nil {
		return fmt.Errorf("failed to marshal column_info: %w", err)
	}

	_, err = r.db.NamedExecContext(ctx, `INSERT INTO datasets (
		id, filename, upload_time, file_path, row_count, column_count, data_quality, column_info
	) VALUES (
		:id, :filename, :upload_time, :file_path, :row_count, :column_count, :data_quality, :column_info
	)`, datasetRow{
		ID:          ds.ID.String(),
		Filename:    ds.Filename,
		UploadTime:  ds.UploadTime.Time(),
		FilePath:    ds.FilePath,
		RowCount:    ds.RowCount,
		ColumnCount: ds.ColumnCount,
		DataQuality: types.JSONText(quality),
		ColumnInfo:  types.JSONText(columns),
	})
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	return nil
}

// GetByID retrieves a dataset by its ID
func (r *datasetRepository) GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	var row datasetRow
	err := r.db.GetContext(ctx, &row, `SELECT
		id, filename, upload_time, file_path, row_count, column_count, data_quality, column_info
	FROM datasets WHERE id = $1`, id.String())
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) || isPQCode(err, pqInvalidText) {
			return nil, fmt.Errorf("%w: %s", core.ErrDatasetNotFound, id)
		}
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	return row.toDomain()
}

// LogQuery appends a query to the dataset's log
func (r *datasetRepository) LogQuery(ctx context.Context, q *dataset.QueryRecord) error {
	var result types.NullJSONText
	if len(q.Result) > 0 {
		result = types.NullJSONText{JSONText: types.JSONText(q.Result), Valid: true}
	}
	var errMsg sql.NullString
	if q.ErrorMessage != "" {
		errMsg = sql.NullString{String: q.ErrorMessage, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO queries (`+queryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		q.ID.String(), q.DatasetID.String(), q.QueryText, q.Timestamp.Time(),
		float64(q.ExecutionTime), string(q.Success), errMsg, result)
	if err != nil {
		if isPQCode(err, pqForeignKeyViolation) || isPQCode(err, pqInvalidText) {
			return fmt.Errorf("%w: %s", core.ErrDatasetNotFound, q.DatasetID)
		}
		return fmt.Errorf("failed to log query: %w", err)
	}
	return nil
}

// History returns the dataset's queries, newest first
func (r *datasetRepository) History(ctx context.Context, datasetID core.DatasetID) ([]*dataset.QueryRecord, error) {
	return r.selectQueries(ctx, `SELECT `+queryColumns+` FROM queries
		WHERE dataset_id = $1 ORDER BY timestamp DESC, id DESC`, datasetID.String())
}

// ListQueries returns the dataset's queries, oldest first
func (r *datasetRepository) ListQueries(ctx context.Context, datasetID core.DatasetID) ([]*dataset.QueryRecord, error) {
	return r.selectQueries(ctx, `SELECT `+queryColumns+` FROM queries
		WHERE dataset_id = $1 ORDER BY timestamp ASC, id ASC`, datasetID.String())
}

// RecentSuccessful returns the latest successful queries across all datasets
func (r *datasetRepository) RecentSuccessful(ctx context.Context, limit int) ([]*dataset.QueryRecord, error) {
	return r.selectQueries(ctx, `SELECT `+queryColumns+` FROM queries
		WHERE success = $1 ORDER BY timestamp DESC, id DESC LIMIT $2`, string(dataset.QuerySucceeded), limit)
}

func (r *datasetRepository) selectQueries(ctx context.Context, query string, args ...interface{}) ([]*dataset.QueryRecord, error) {
	var rows []queryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		if isPQCode(err, pqInvalidText) {
			return []*dataset.QueryRecord{}, nil
		}
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	out := make([]*dataset.QueryRecord, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

func isPQCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return stderrors.As(err, &pqErr) && pqErr.Code == code
}
