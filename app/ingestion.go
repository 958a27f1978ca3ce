package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"datagent/adapters/datareadiness/validator"
	"datagent/adapters/stats/insights"
	"datagent/domain/datareadiness/ingestion"
	"datagent/domain/datareadiness/profiling"
	"datagent/internal"
	"datagent/internal/config"
	"datagent/internal/metrics"
	"datagent/ports"
)

const budgetExhausted = "processing budget exhausted"

// IngestionPipeline turns an uploaded workbook into an IngestionReport
type IngestionPipeline struct {
	opener    ports.WorkbookOpener
	config    config.IngestionConfig
	validator *validator.SheetValidator
	analyzer  *insights.Analyzer
	metrics   *metrics.Recorder
	logger    *slog.Logger
}

// NewIngestionPipeline wires the sheet validator and insight analyzer from cfg.
// recorder may be nil.
func NewIngestionPipeline(opener ports.WorkbookOpener, cfg config.IngestionConfig, recorder *metrics.Recorder, logger *slog.Logger) *IngestionPipeline {
	logger = internal.LoggerOr(logger)
	return &IngestionPipeline{
		opener: opener,
		config: cfg,
		validator: validator.New(validator.Config{
			MinRows:         validator.DefaultConfig().MinRows,
			MinColumns:      validator.DefaultConfig().MinColumns,
			MinCompleteness: cfg.MinCompleteness,
			PreviewRows:     cfg.PreviewRows,
			SampleSize:      cfg.SampleSize,
		}, logger),
		analyzer: insights.NewAnalyzer(cfg.HistogramBins),
		metrics:  recorder,
		logger:   logger,
	}
}

// Process ingests the file at path. Failures are *ingestion.Error values
// tagged with the stage that rejected the file.
func (p *IngestionPipeline) Process(ctx context.Context, path string) (*ingestion.IngestionReport, error) {
	start := time.Now()
	report, err := p.process(ctx, path)

	result := "success"
	if err != nil {
		result = string(ingestion.ErrorTypeOf(err))
		p.logger.Warn("ingestion failed",
			slog.String("path", path),
			slog.String("error_type", result),
			slog.String("error", err.Error()))
	} else {
		p.logger.Info("ingestion completed",
			slog.String("path", path),
			slog.Int("sheets", len(report.Sheets)),
			slog.Int("accepted", len(report.AcceptedSheets())),
			slog.Duration("elapsed", time.Since(start)))
	}
	p.metrics.ObserveIngestion(result, time.Since(start))
	return report, err
}

func (p *IngestionPipeline) process(ctx context.Context, path string) (*ingestion.IngestionReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, ingestion.WrapError(ingestion.ErrFileNotFound, "File not found", err)
	}
	if info.Size() > p.config.MaxFileSize {
		return nil, ingestion.NewError(ingestion.ErrFileTooLarge,
			fmt.Sprintf("File too large (%d bytes, limit %d)", info.Size(), p.config.MaxFileSize))
	}

	wb, err := p.opener.Open(path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	sheets := wb.SheetNames()
	if len(sheets) == 0 {
		return nil, ingestion.NewError(ingestion.ErrNoSheets, "No sheets found in file")
	}

	report := ingestion.NewIngestionReport(path, sheets)
	var first *ingestion.CleanedTable
	cells := 0

	for i, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, ingestion.WrapError(ingestion.ErrGeneral, "Ingestion cancelled", err)
		}

		if i >= p.config.MaxSheets || cells+wb.CellEstimate(sheet) > p.config.MaxCells {
			p.reject(report, ingestion.SheetError{Sheet: sheet, Error: budgetExhausted, ErrorType: ingestion.ErrSheetProcessingError})
			continue
		}

		result, read := p.processSheet(wb, sheet)
		cells += read
		if i == 0 {
			first = result.Table
		}
		if result.Accepted() {
			report.Accept(sheet, *result.Info, result.Table)
		} else {
			p.reject(report, *result.Err)
		}
	}

	if len(report.AcceptedSheets()) == 0 {
		return nil, &ingestion.Error{
			Type:        ingestion.ErrNoValidSheets,
			Message:     "No valid sheets found in file",
			SheetErrors: report.SheetErrors,
		}
	}

	report.Insights = p.insights(first)
	return report, nil
}

// processSheet reads and validates one sheet, returning the number of cells read.
// A panic or read failure becomes a sheet_processing_error.
func (p *IngestionPipeline) processSheet(wb ports.Workbook, sheet string) (result validator.Result, cells int) {
	defer func() {
		if r := recover(); r != nil {
			result = processingError(sheet, fmt.Sprintf("Error processing sheet: %v", r))
		}
	}()

	raw, err := wb.ReadSheet(sheet)
	if err != nil {
		return processingError(sheet, "Error processing sheet: "+err.Error()), 0
	}
	cells = raw.CellCount()
	if cells > p.config.MaxCells {
		return processingError(sheet, budgetExhausted), cells
	}
	return p.validator.Validate(sheet, raw), cells
}

func (p *IngestionPipeline) reject(report *ingestion.IngestionReport, sheetErr ingestion.SheetError) {
	report.Reject(sheetErr)
	p.metrics.SheetRejected(string(sheetErr.ErrorType))
}

// insights never fails the ingestion
func (p *IngestionPipeline) insights(table *ingestion.CleanedTable) (out *profiling.Insights) {
	if table == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("insight generation panicked", slog.Any("panic", r))
			out = nil
		}
	}()

	result, err := p.analyzer.Analyze(table)
	if err != nil {
		p.logger.Debug("insights unavailable", slog.String("error", err.Error()))
		return nil
	}
	return result
}

func processingError(sheet, message string) validator.Result {
	return validator.Result{Err: &ingestion.SheetError{
		Sheet:     sheet,
		Error:     message,
		ErrorType: ingestion.ErrSheetProcessingError,
	}}
}
