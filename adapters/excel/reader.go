package excel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"datagent/adapters/datareadiness/classifier"
	"datagent/adapters/datareadiness/normalizer"
	"datagent/domain/datareadiness/ingestion"
)

// xlsxWorkbook reads sheets of an OOXML workbook
type xlsxWorkbook struct {
	file *excelize.File
}

func (w *xlsxWorkbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// CellEstimate derives the sheet size from its declared dimension, e.g. "A1:D20"
func (w *xlsxWorkbook) CellEstimate(sheet string) int {
	dim, err := w.file.GetSheetDimension(sheet)
	if err != nil || dim == "" {
		return 0
	}
	refs := strings.Split(dim, ":")
	startCol, startRow, err := excelize.CellNameToCoordinates(refs[0])
	if err != nil {
		return 0
	}
	endCol, endRow := startCol, startRow
	if len(refs) == 2 {
		if endCol, endRow, err = excelize.CellNameToCoordinates(refs[1]); err != nil {
			return 0
		}
	}
	return (endCol - startCol + 1) * (endRow - startRow + 1)
}

// ReadSheet loads a sheet. Numeric cells keep their raw value unless their
// display format renders them as a date, in which case the formatted text is
// kept so date classification can see it.
func (w *xlsxWorkbook) ReadSheet(sheet string) (*ingestion.RawTable, error) {
	formatted, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	raw, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	return buildTable(formatted, func(row, col int, text string) ingestion.Cell {
		rawText := text
		if row < len(raw) && col < len(raw[row]) {
			rawText = raw[row][col]
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(rawText), 64)
		if err != nil {
			return ingestion.TextCell(text)
		}

		cellRef, err := excelize.CoordinatesToCellName(col+1, row+1)
		if err != nil {
			return ingestion.TextCell(text)
		}
		cellType, err := w.file.GetCellType(sheet, cellRef)
		if err != nil {
			return ingestion.TextCell(text)
		}
		switch cellType {
		case excelize.CellTypeUnset, excelize.CellTypeNumber:
			if text != rawText && classifier.IsDate(text) {
				return ingestion.TextCell(text)
			}
			return ingestion.NumberCell(n)
		}
		return ingestion.TextCell(text)
	}), nil
}

func (w *xlsxWorkbook) Close() error {
	return w.file.Close()
}

// buildTable turns a grid of rows into a raw table. The first row becomes the
// header row; blank and missing header cells are named "Unnamed: {index}".
func buildTable(rows [][]string, cellAt func(row, col int, text string) ingestion.Cell) *ingestion.RawTable {
	if len(rows) == 0 {
		return &ingestion.RawTable{}
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	headers := make([]string, width)
	for i := range headers {
		if i < len(rows[0]) && strings.TrimSpace(rows[0][i]) != "" {
			headers[i] = rows[0][i]
		} else {
			headers[i] = fmt.Sprintf("%s: %d", normalizer.UnnamedMarker, i)
		}
	}

	table := &ingestion.RawTable{Headers: headers, Rows: make([][]ingestion.Cell, 0, len(rows)-1)}
	for r := 1; r < len(rows); r++ {
		cells := make([]ingestion.Cell, width)
		for c, text := range rows[r] {
			if text == "" {
				continue
			}
			cells[c] = cellAt(r, c, text)
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}
