package ingestion

import (
	"strconv"
)

// CellKind is the raw kind of a spreadsheet cell as read from the container
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell is a single raw spreadsheet cell: text, number or empty
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// TextCell builds a text cell; an empty string yields an empty cell
func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell builds a numeric cell
func NumberCell(n float64) Cell {
	return Cell{Kind: CellNumber, Number: n}
}

// IsEmpty reports whether the cell holds no data
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// String returns the textual form of the cell
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	}
	return ""
}

// Value converts the raw cell into an uncoerced value
func (c Cell) Value() Value {
	switch c.Kind {
	case CellText:
		return NewTextValue(c.Text)
	case CellNumber:
		return NewNumericValue(c.Number)
	}
	return NewMissingValue()
}

// RawTable is one sheet as read from the container: a header row plus positional
// data rows. Rows may be shorter than Headers; absent trailing cells are empty.
type RawTable struct {
	Headers []string
	Rows    [][]Cell
}

// RowCount returns the number of data rows
func (t *RawTable) RowCount() int {
	return len(t.Rows)
}

// CellAt returns the cell at (row, col), empty when out of range
func (t *RawTable) CellAt(row, col int) Cell {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return Cell{}
	}
	return t.Rows[row][col]
}

// CellCount returns rows × headers, the work a sheet costs to process
func (t *RawTable) CellCount() int {
	return len(t.Rows) * len(t.Headers)
}

// ColumnType is the classification of a whole column
type ColumnType string

const (
	ColumnTypeDate       ColumnType = "date"
	ColumnTypeNumeric    ColumnType = "numeric"
	ColumnTypePercentage ColumnType = "percentage"
	ColumnTypeCurrency   ColumnType = "currency"
	ColumnTypeText       ColumnType = "text"
)

// Tag returns the reported semantic type. Currency amounts are reported as numeric.
func (t ColumnType) Tag() string {
	if t == ColumnTypeCurrency {
		return string(ColumnTypeNumeric)
	}
	if t == "" {
		return string(ColumnTypeText)
	}
	return string(t)
}

// IsNumeric reports whether values of this column type are numbers
func (t ColumnType) IsNumeric() bool {
	return t == ColumnTypeNumeric || t == ColumnTypePercentage || t == ColumnTypeCurrency
}

// Column is a named, typed column of a cleaned table
type Column struct {
	Name     string     // normalized, unique
	Original string     // header after unnamed replacement, before normalization
	Type     ColumnType // resolved type
	Values   []Value
}

// CleanedTable is a sheet after header normalization and type coercion
type CleanedTable struct {
	Columns []Column
	Rows    int
}

// ColumnCount returns the number of columns
func (t *CleanedTable) ColumnCount() int {
	return len(t.Columns)
}

// ColumnNames returns the column names in order
func (t *CleanedTable) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column finds a column by name
func (t *CleanedTable) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// ColumnTypes returns the reported semantic type per column
func (t *CleanedTable) ColumnTypes() map[string]string {
	types := make(map[string]string, len(t.Columns))
	for _, c := range t.Columns {
		types[c.Name] = c.Type.Tag()
	}
	return types
}

// Row returns row i as a column-name keyed record
func (t *CleanedTable) Row(i int) map[string]Value {
	record := make(map[string]Value, len(t.Columns))
	for _, c := range t.Columns {
		if i < len(c.Values) {
			record[c.Name] = c.Values[i]
		} else {
			record[c.Name] = NewMissingValue()
		}
	}
	return record
}

// Head returns up to n leading rows as records
func (t *CleanedTable) Head(n int) []map[string]Value {
	if n > t.Rows {
		n = t.Rows
	}
	if n < 0 {
		n = 0
	}
	records := make([]map[string]Value, n)
	for i := 0; i < n; i++ {
		records[i] = t.Row(i)
	}
	return records
}

// SelectRows returns a new table holding only the given row indices, in order
func (t *CleanedTable) SelectRows(indices []int) *CleanedTable {
	out := &CleanedTable{Columns: make([]Column, len(t.Columns)), Rows: len(indices)}
	for ci, c := range t.Columns {
		values := make([]Value, len(indices))
		for j, idx := range indices {
			if idx >= 0 && idx < len(c.Values) {
				values[j] = c.Values[idx]
			} else {
				values[j] = NewMissingValue()
			}
		}
		out.Columns[ci] = Column{Name: c.Name, Original: c.Original, Type: c.Type, Values: values}
	}
	return out
}
