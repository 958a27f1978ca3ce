package excel

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/richardlehane/mscfb"
	"github.com/xuri/excelize/v2"

	"datagent/domain/datareadiness/ingestion"
	"datagent/ports"
)

// oleMagic is the compound file header shared by legacy .xls and encrypted OOXML packages
var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// Opener opens .xlsx/.xlsm workbooks with excelize and .csv files as a
// single-sheet workbook
type Opener struct{}

// NewOpener creates a workbook opener
func NewOpener() *Opener {
	return &Opener{}
}

var _ ports.WorkbookOpener = (*Opener)(nil)

// Open opens the container at path. Failures are tagged password_protected,
// invalid_file or open_error.
func (o *Opener) Open(path string) (ports.Workbook, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return openCSV(path)
	}

	isOLE, err := hasOLEHeader(path)
	if err != nil {
		return nil, ingestion.WrapError(ingestion.ErrOpenError, "Error opening Excel file", err)
	}
	if isOLE {
		return nil, classifyOLE(path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		if f != nil {
			_ = f.Close()
		}
		if errors.Is(err, zip.ErrFormat) || errors.Is(err, excelize.ErrWorkbookFileFormat) ||
			errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ingestion.WrapError(ingestion.ErrInvalidFile, "Invalid or corrupt Excel file", err)
		}
		return nil, ingestion.WrapError(ingestion.ErrOpenError, "Error opening Excel file", err)
	}
	return &xlsxWorkbook{file: f}, nil
}

func hasOLEHeader(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	header := make([]byte, len(oleMagic))
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return n == len(oleMagic) && bytes.Equal(header, oleMagic), nil
}

// classifyOLE tells an encrypted OOXML package from a legacy binary workbook
func classifyOLE(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return ingestion.WrapError(ingestion.ErrOpenError, "Error opening Excel file", err)
	}
	defer f.Close()

	doc, err := mscfb.New(f)
	if err != nil {
		return ingestion.WrapError(ingestion.ErrInvalidFile, "Invalid or corrupt Excel file", err)
	}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		switch entry.Name {
		case "EncryptedPackage", "EncryptionInfo":
			return ingestion.NewError(ingestion.ErrPasswordProtected, "Password protected Excel files are not supported")
		}
	}
	return ingestion.NewError(ingestion.ErrInvalidFile, "Invalid or corrupt Excel file: legacy binary workbooks are not supported")
}
