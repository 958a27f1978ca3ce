package validator

import (
	"fmt"
	"log/slog"
	"strings"

	"datagent/adapters/datareadiness/coercer"
	"datagent/adapters/datareadiness/normalizer"
	"datagent/adapters/datareadiness/quality"
	"datagent/domain/datareadiness/ingestion"
	"datagent/internal"
)

// Config defines the sheet acceptance policy
type Config struct {
	MinRows         int // post-normalization
	MinColumns      int // post-normalization
	MinCompleteness int // sheets below this are rejected; equal is accepted
	PreviewRows     int
	SampleSize      int
}

// DefaultConfig returns the standard acceptance policy
func DefaultConfig() Config {
	return Config{
		MinRows:         2,
		MinColumns:      2,
		MinCompleteness: 50,
		PreviewRows:     5,
		SampleSize:      coercer.DefaultCoercionConfig().SampleSize,
	}
}

// Result is the outcome of validating one sheet. Exactly one of Info and Err
// is set. Table is set whenever normalization ran.
type Result struct {
	Info  *ingestion.SheetInfo
	Err   *ingestion.SheetError
	Table *ingestion.CleanedTable
}

// Accepted reports whether the sheet passed validation
func (r Result) Accepted() bool {
	return r.Info != nil
}

// SheetValidator runs normalization, coercion and quality assessment on a
// sheet and decides whether it is usable
type SheetValidator struct {
	config   Config
	coercer  *coercer.TypeCoercer
	assessor *quality.Assessor
	logger   *slog.Logger
}

// New creates a sheet validator
func New(config Config, logger *slog.Logger) *SheetValidator {
	return &SheetValidator{
		config:   config,
		coercer:  coercer.NewTypeCoercer(coercer.CoercionConfig{SampleSize: config.SampleSize}),
		assessor: quality.NewAssessor(),
		logger:   internal.LoggerOr(logger),
	}
}

// Validate takes one raw sheet through the acceptance state machine
func (v *SheetValidator) Validate(sheet string, raw *ingestion.RawTable) Result {
	if raw.RowCount() == 0 || len(raw.Headers) == 0 {
		return v.reject(sheet, ingestion.ErrEmptySheet, "Empty sheet", nil)
	}

	normalized := normalizer.Normalize(raw)
	if normalized.Rows < v.config.MinRows || normalized.ColumnCount() < v.config.MinColumns {
		return v.reject(sheet, ingestion.ErrInsufficientData,
			fmt.Sprintf("Sheet must contain at least %d rows and %d columns", v.config.MinRows, v.config.MinColumns),
			normalized)
	}

	cleaned := v.coercer.Coerce(normalized)
	report := v.assessor.Assess(cleaned)
	if report.Completeness < v.config.MinCompleteness {
		return v.reject(sheet, ingestion.ErrLowQualityData,
			fmt.Sprintf("Sheet contains too much missing data (completeness %d%% < %d%%)", report.Completeness, v.config.MinCompleteness),
			cleaned)
	}

	names := cleaned.ColumnNames()
	info := &ingestion.SheetInfo{
		Rows:           cleaned.Rows,
		Columns:        cleaned.ColumnCount(),
		Preview:        cleaned.Head(v.config.PreviewRows),
		ColumnNames:    names,
		ColumnTypes:    cleaned.ColumnTypes(),
		DataQuality:    report,
		SuggestedNames: SuggestColumnNames(cleaned),
		Warnings:       []ingestion.SheetWarning{},
	}

	if report.DuplicateRows > 0 {
		info.Warnings = append(info.Warnings, ingestion.SheetWarning{
			Type:     "duplicate_rows",
			Message:  fmt.Sprintf("Found %d duplicate rows", report.DuplicateRows),
			Severity: ingestion.SeverityWarning,
		})
	}
	if mixed := report.MixedColumns(names); len(mixed) > 0 {
		info.Warnings = append(info.Warnings, ingestion.SheetWarning{
			Type:     "mixed_types",
			Message:  "Mixed data types found in columns: " + strings.Join(mixed, ", "),
			Severity: ingestion.SeverityWarning,
		})
	}
	if hasSpacedHeader(cleaned) {
		info.Warnings = append(info.Warnings, ingestion.SheetWarning{
			Type:     "column_names",
			Message:  "Some column names contain spaces and were renamed",
			Severity: ingestion.SeverityInfo,
		})
	}

	v.logger.Debug("sheet accepted",
		slog.String("sheet", sheet),
		slog.Int("rows", info.Rows),
		slog.Int("columns", info.Columns),
		slog.Int("completeness", report.Completeness),
		slog.Int("warnings", len(info.Warnings)))

	return Result{Info: info, Table: cleaned}
}

func (v *SheetValidator) reject(sheet string, errType ingestion.ErrorType, message string, table *ingestion.CleanedTable) Result {
	v.logger.Info("sheet rejected",
		slog.String("sheet", sheet),
		slog.String("error_type", string(errType)),
		slog.String("reason", message))
	return Result{
		Err:   &ingestion.SheetError{Sheet: sheet, Error: message, ErrorType: errType},
		Table: table,
	}
}

// hasSpacedHeader reports whether any retained source header contained a space
func hasSpacedHeader(table *ingestion.CleanedTable) bool {
	for _, c := range table.Columns {
		if strings.Contains(c.Original, " ") {
			return true
		}
	}
	return false
}
