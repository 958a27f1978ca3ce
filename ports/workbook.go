package ports

import (
	"datagent/domain/datareadiness/ingestion"
)

// Workbook is an opened spreadsheet container
type Workbook interface {
	// SheetNames returns sheet names in file order
	SheetNames() []string

	// CellEstimate returns the declared size of a sheet in cells, or 0 when unknown
	CellEstimate(sheet string) int

	// ReadSheet loads one sheet; the first row becomes the header row
	ReadSheet(sheet string) (*ingestion.RawTable, error)

	Close() error
}

// WorkbookOpener opens spreadsheet containers. Open failures are tagged
// *ingestion.Error values (password_protected, invalid_file, open_error).
type WorkbookOpener interface {
	Open(path string) (Workbook, error)
}
