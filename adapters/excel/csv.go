package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"datagent/domain/datareadiness/ingestion"
)

// csvWorkbook exposes a CSV file as a single sheet named after the file
type csvWorkbook struct {
	sheet string
	rows  [][]string
}

func openCSV(path string) (*csvWorkbook, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, ingestion.WrapError(ingestion.ErrOpenError, "Error opening CSV file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, ingestion.WrapError(ingestion.ErrInvalidFile, "Invalid or corrupt CSV file", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &csvWorkbook{sheet: name, rows: rows}, nil
}

func (w *csvWorkbook) SheetNames() []string {
	return []string{w.sheet}
}

func (w *csvWorkbook) CellEstimate(sheet string) int {
	if sheet != w.sheet {
		return 0
	}
	cells := 0
	for _, r := range w.rows {
		cells += len(r)
	}
	return cells
}

// ReadSheet returns the CSV contents; all cells are text
func (w *csvWorkbook) ReadSheet(sheet string) (*ingestion.RawTable, error) {
	if sheet != w.sheet {
		return nil, fmt.Errorf("sheet %q does not exist", sheet)
	}
	return buildTable(w.rows, func(_, _ int, text string) ingestion.Cell {
		return ingestion.TextCell(text)
	}), nil
}

func (w *csvWorkbook) Close() error {
	return nil
}
