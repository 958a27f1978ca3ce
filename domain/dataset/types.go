package dataset

import (
	"encoding/json"

	"datagent/domain/core"
	"datagent/domain/datareadiness/ingestion"
	"datagent/domain/datareadiness/profiling"
)

// ColumnInfo describes the columns of the stored sheet
type ColumnInfo struct {
	Names []string          `json:"names"`
	Types map[string]string `json:"types"`
}

// Dataset is an uploaded file summarized from its first accepted sheet
type Dataset struct {
	ID          core.DatasetID          `json:"id"`
	Filename    string                  `json:"filename"`
	UploadTime  core.Timestamp          `json:"upload_time"`
	FilePath    string                  `json:"file_path"`
	RowCount    int                     `json:"row_count"`
	ColumnCount int                     `json:"column_count"`
	DataQuality profiling.QualityReport `json:"data_quality"`
	ColumnInfo  ColumnInfo              `json:"column_info"`
}

// FromReport builds a dataset record from the first accepted sheet of a report
func FromReport(filename string, report *ingestion.IngestionReport) (*Dataset, bool) {
	_, info, _, ok := report.Primary()
	if !ok {
		return nil, false
	}
	return &Dataset{
		ID:          core.NewDatasetID(),
		Filename:    filename,
		UploadTime:  core.Now(),
		FilePath:    report.FilePath,
		RowCount:    info.Rows,
		ColumnCount: info.Columns,
		DataQuality: info.DataQuality,
		ColumnInfo: ColumnInfo{
			Names: info.ColumnNames,
			Types: info.ColumnTypes,
		},
	}, true
}

// QueryStatus is the outcome of a logged query
type QueryStatus string

const (
	QuerySucceeded QueryStatus = "success"
	QueryFailed    QueryStatus = "error"
)

// QueryRecord is one entry of a dataset's append-only query log
type QueryRecord struct {
	ID            core.QueryID    `json:"id"`
	DatasetID     core.DatasetID  `json:"dataset_id"`
	QueryText     string          `json:"query_text"`
	Timestamp     core.Timestamp  `json:"timestamp"`
	ExecutionTime core.Elapsed    `json:"execution_time"`
	Success       QueryStatus     `json:"success"`
	ErrorMessage  string          `json:"error_message,omitempty"`
	Result        json.RawMessage `json:"result,omitempty"`
}

// NewQueryRecord creates a log entry; a non-nil err marks the query failed
func NewQueryRecord(datasetID core.DatasetID, query string, elapsed core.Elapsed, result json.RawMessage, err error) *QueryRecord {
	rec := &QueryRecord{
		ID:            core.NewQueryID(),
		DatasetID:     datasetID,
		QueryText:     query,
		Timestamp:     core.Now(),
		ExecutionTime: elapsed,
		Success:       QuerySucceeded,
		Result:        result,
	}
	if err != nil {
		rec.Success = QueryFailed
		rec.ErrorMessage = err.Error()
	}
	return rec
}

// Succeeded reports whether the query completed
func (q *QueryRecord) Succeeded() bool {
	return q.Success == QuerySucceeded
}
