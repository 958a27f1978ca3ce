package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"datagent/domain/datareadiness/ingestion"
)

func saveWorkbook(t *testing.T, f *excelize.File, opts ...excelize.Options) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path, opts...))
	require.NoError(t, f.Close())
	return path
}

func TestOpen_ReadsSheetsInOrder(t *testing.T) {
	f := excelize.NewFile()
	_, err := f.NewSheet("Second")
	require.NoError(t, err)
	path := saveWorkbook(t, f)

	wb, err := NewOpener().Open(path)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"Sheet1", "Second"}, wb.SheetNames())
}

func TestReadSheet_CellKinds(t *testing.T) {
	f := excelize.NewFile()
	sheet := "Sheet1"
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Name", "", "Sales", "Code"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"A", "x", 100, "007"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"B", nil, 200.5, "008"}))
	path := saveWorkbook(t, f)

	wb, err := NewOpener().Open(path)
	require.NoError(t, err)
	defer wb.Close()

	raw, err := wb.ReadSheet(sheet)
	require.NoError(t, err)

	assert.Equal(t, []string{"Name", "Unnamed: 1", "Sales", "Code"}, raw.Headers)
	require.Equal(t, 2, raw.RowCount())
	assert.Equal(t, ingestion.TextCell("A"), raw.CellAt(0, 0))
	assert.Equal(t, ingestion.NumberCell(100), raw.CellAt(0, 2))
	assert.Equal(t, ingestion.NumberCell(200.5), raw.CellAt(1, 2))
	assert.True(t, raw.CellAt(1, 1).IsEmpty())
	// numeric-looking text stays text
	assert.Equal(t, ingestion.TextCell("007"), raw.CellAt(0, 3))
}

func TestReadSheet_DateFormattedNumbersKeepText(t *testing.T) {
	f := excelize.NewFile()
	sheet := "Sheet1"
	layout := "yyyy-mm-dd"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &layout})
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Day"))
	require.NoError(t, f.SetCellValue(sheet, "A2", 44941)) // 2023-01-15
	require.NoError(t, f.SetCellStyle(sheet, "A2", "A2", style))
	path := saveWorkbook(t, f)

	wb, err := NewOpener().Open(path)
	require.NoError(t, err)
	defer wb.Close()

	raw, err := wb.ReadSheet(sheet)
	require.NoError(t, err)
	assert.Equal(t, ingestion.TextCell("2023-01-15"), raw.CellAt(0, 0))
}

func TestReadSheet_EmptySheet(t *testing.T) {
	path := saveWorkbook(t, excelize.NewFile())

	wb, err := NewOpener().Open(path)
	require.NoError(t, err)
	defer wb.Close()

	raw, err := wb.ReadSheet("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, 0, raw.RowCount())
	assert.Empty(t, raw.Headers)
}

func TestCellEstimate(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "h"))
	require.NoError(t, f.SetCellValue("Sheet1", "C4", 1))
	require.NoError(t, f.SetSheetDimension("Sheet1", "A1:C4"))
	path := saveWorkbook(t, f)

	wb, err := NewOpener().Open(path)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, 12, wb.CellEstimate("Sheet1"))
}

func TestOpen_Failures(t *testing.T) {
	dir := t.TempDir()

	notZip := filepath.Join(dir, "text.xlsx")
	require.NoError(t, os.WriteFile(notZip, []byte("plain text, not a workbook"), 0o600))

	legacy := filepath.Join(dir, "legacy.xls")
	require.NoError(t, os.WriteFile(legacy, append(append([]byte{}, oleMagic...), make([]byte, 64)...), 0o600))

	tests := []struct {
		name     string
		path     string
		expected ingestion.ErrorType
	}{
		{"not a zip container", notZip, ingestion.ErrInvalidFile},
		{"corrupt compound file", legacy, ingestion.ErrInvalidFile},
		{"missing file", filepath.Join(dir, "absent.xlsx"), ingestion.ErrOpenError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOpener().Open(tt.path)
			require.Error(t, err)
			assert.Equal(t, tt.expected, ingestion.ErrorTypeOf(err))
		})
	}
}

func TestOpen_PasswordProtected(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "secret"))
	path := saveWorkbook(t, f, excelize.Options{Password: "hunter2"})

	_, err := NewOpener().Open(path)

	require.Error(t, err)
	assert.Equal(t, ingestion.ErrPasswordProtected, ingestion.ErrorTypeOf(err))
}

func TestOpen_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffName,Sales\nA,100\nB\n"), 0o600))

	wb, err := NewOpener().Open(path)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"sales"}, wb.SheetNames())
	raw, err := wb.ReadSheet("sales")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Sales"}, raw.Headers)
	assert.Equal(t, ingestion.TextCell("100"), raw.CellAt(0, 1))
	assert.True(t, raw.CellAt(1, 1).IsEmpty())
	assert.Equal(t, 5, wb.CellEstimate("sales"))

	_, err = wb.ReadSheet("other")
	assert.Error(t, err)
}
