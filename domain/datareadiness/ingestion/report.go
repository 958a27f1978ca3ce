package ingestion

import (
	"datagent/domain/datareadiness/profiling"
)

// SheetInfo is the summary of an accepted sheet
type SheetInfo struct {
	Rows           int                     `json:"rows"`
	Columns        int                     `json:"columns"`
	Preview        []map[string]Value      `json:"preview"`
	ColumnNames    []string                `json:"column_names"`
	ColumnTypes    map[string]string       `json:"column_types"`
	DataQuality    profiling.QualityReport `json:"data_quality"`
	SuggestedNames map[string][]string     `json:"suggested_names"`
	Warnings       []SheetWarning          `json:"warnings"`
}

// Severity of a sheet warning
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// SheetWarning is a non-fatal observation about an accepted sheet
type SheetWarning struct {
	Type     string   `json:"type"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// SheetError records why a sheet was rejected
type SheetError struct {
	Sheet     string    `json:"sheet"`
	Error     string    `json:"error"`
	ErrorType ErrorType `json:"error_type"`
}

// IngestionReport is the result of a successful ingestion
type IngestionReport struct {
	Success       bool                 `json:"success"`
	Sheets        []string             `json:"sheets"`
	AllSheetsData map[string]SheetInfo `json:"all_sheets_data"`
	Insights      *profiling.Insights  `json:"insights"`
	SheetErrors   []SheetError         `json:"sheet_errors"`
	FilePath      string               `json:"file_path"`

	accepted []string
	tables   map[string]*CleanedTable
}

// NewIngestionReport creates an empty successful report for a file
func NewIngestionReport(path string, sheets []string) *IngestionReport {
	return &IngestionReport{
		Success:       true,
		Sheets:        sheets,
		AllSheetsData: make(map[string]SheetInfo),
		FilePath:      path,
		tables:        make(map[string]*CleanedTable),
	}
}

// Accept records an accepted sheet and its cleaned table
func (r *IngestionReport) Accept(name string, info SheetInfo, table *CleanedTable) {
	r.AllSheetsData[name] = info
	r.accepted = append(r.accepted, name)
	r.tables[name] = table
}

// Reject records a rejected sheet
func (r *IngestionReport) Reject(sheetErr SheetError) {
	r.SheetErrors = append(r.SheetErrors, sheetErr)
}

// AcceptedSheets returns accepted sheet names in file order
func (r *IngestionReport) AcceptedSheets() []string {
	return append([]string(nil), r.accepted...)
}

// Table returns the cleaned table of an accepted sheet
func (r *IngestionReport) Table(name string) (*CleanedTable, bool) {
	t, ok := r.tables[name]
	return t, ok
}

// Primary returns the first accepted sheet in file order
func (r *IngestionReport) Primary() (string, SheetInfo, *CleanedTable, bool) {
	if len(r.accepted) == 0 {
		return "", SheetInfo{}, nil, false
	}
	name := r.accepted[0]
	return name, r.AllSheetsData[name], r.tables[name], true
}
