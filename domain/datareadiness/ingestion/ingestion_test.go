package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Constructors(t *testing.T) {
	assert.True(t, NewTextValue("").IsMissing())
	assert.True(t, NewNumericValue(math.NaN()).IsMissing())
	assert.True(t, NewCurrencyValue(math.Inf(1)).IsMissing())

	p := NewPercentageValue(0.25)
	assert.Equal(t, KindNumber, p.Kind())
	assert.Equal(t, ValueTypePercentage, p.Type)
	assert.Equal(t, 0.25, p.AsFloat64())
}

func TestValue_Equal(t *testing.T) {
	assert.True(t, NewMissingValue().Equal(NewMissingValue()))
	assert.True(t, NewTextValue("a").Equal(NewTextValue("a")))
	assert.False(t, NewTextValue("1").Equal(NewNumericValue(1)))
	assert.False(t, NewNumericValue(0.1).Equal(NewPercentageValue(0.1)))

	day := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.True(t, NewDateValue(day).Equal(NewDateValue(day)))
}

func TestValue_MarshalJSON(t *testing.T) {
	row := map[string]Value{
		"name":  NewTextValue("A"),
		"sales": NewNumericValue(100),
		"day":   NewDateValue(time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)),
		"none":  NewMissingValue(),
	}
	b, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"A","sales":100,"day":"2023-01-15","none":null}`, string(b))
}

func TestCleanedTable_HeadAndSelect(t *testing.T) {
	table := &CleanedTable{
		Rows: 3,
		Columns: []Column{
			{Name: "n", Type: ColumnTypeNumeric, Values: []Value{NewNumericValue(1), NewNumericValue(2), NewNumericValue(3)}},
		},
	}

	assert.Len(t, table.Head(5), 3)
	assert.Len(t, table.Head(2), 2)

	picked := table.SelectRows([]int{2, 0})
	assert.Equal(t, 2, picked.Rows)
	assert.Equal(t, 3.0, picked.Columns[0].Values[0].AsFloat64())
	assert.Equal(t, 3.0, table.Columns[0].Values[2].AsFloat64())
}

func TestColumnType_Tag(t *testing.T) {
	assert.Equal(t, "numeric", ColumnTypeCurrency.Tag())
	assert.Equal(t, "percentage", ColumnTypePercentage.Tag())
	assert.Equal(t, "text", ColumnType("").Tag())
}

func TestErrorTypeOf(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewError(ErrNoSheets, "Excel file contains no sheets"))
	assert.Equal(t, ErrNoSheets, ErrorTypeOf(err))
	assert.Equal(t, ErrGeneral, ErrorTypeOf(errors.New("boom")))

	cause := errors.New("disk")
	wrapped := WrapError(ErrOpenError, "Error opening Excel file", cause)
	assert.ErrorIs(t, wrapped, cause)
}

func TestFailureFrom(t *testing.T) {
	err := &Error{
		Type:        ErrNoValidSheets,
		Message:     "No valid sheets found in file",
		SheetErrors: []SheetError{{Sheet: "S1", Error: "Empty sheet", ErrorType: ErrEmptySheet}},
	}

	b, jerr := json.Marshal(FailureFrom(err))
	require.NoError(t, jerr)
	assert.JSONEq(t, `{"success":false,"error":"No valid sheets found in file","error_type":"no_valid_sheets",
		"sheet_errors":[{"sheet":"S1","error":"Empty sheet","error_type":"empty_sheet"}]}`, string(b))

	generic := FailureFrom(errors.New("boom"))
	assert.Equal(t, ErrGeneral, generic.ErrorType)
	assert.Nil(t, generic.SheetErrors)
}

func TestIngestionReport_AcceptOrder(t *testing.T) {
	report := NewIngestionReport("/tmp/book.xlsx", []string{"B", "A"})
	report.Accept("B", SheetInfo{Rows: 2}, &CleanedTable{Rows: 2})
	report.Accept("A", SheetInfo{Rows: 3}, &CleanedTable{Rows: 3})

	name, info, table, ok := report.Primary()
	require.True(t, ok)
	assert.Equal(t, "B", name)
	assert.Equal(t, 2, info.Rows)
	assert.Equal(t, 2, table.Rows)
	assert.Equal(t, []string{"B", "A"}, report.AcceptedSheets())

	_, ok = report.Table("missing")
	assert.False(t, ok)
}
