package coercer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datagent/domain/datareadiness/ingestion"
)

func column(name string, ss ...string) ingestion.Column {
	values := make([]ingestion.Value, len(ss))
	for i, s := range ss {
		values[i] = ingestion.NewTextValue(s)
	}
	return ingestion.Column{Name: name, Original: name, Values: values}
}

func floats(values []ingestion.Value) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v.AsFloat64()
	}
	return out
}

func TestCoerceColumn(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	t.Run("percentages become fractions", func(t *testing.T) {
		col := c.CoerceColumn(column("rate", "10%", "20%", "30%"))
		assert.Equal(t, ingestion.ColumnTypePercentage, col.Type)
		assert.InDeltaSlice(t, []float64{0.10, 0.20, 0.30}, floats(col.Values), 1e-12)
		assert.Equal(t, "percentage", col.Type.Tag())
	})

	t.Run("numeric strings", func(t *testing.T) {
		col := c.CoerceColumn(column("sales", "100", "200"))
		assert.Equal(t, ingestion.ColumnTypeNumeric, col.Type)
		assert.Equal(t, []float64{100, 200}, floats(col.Values))
	})

	t.Run("currency amounts report numeric", func(t *testing.T) {
		col := c.CoerceColumn(column("price", "$10.50", "$3"))
		assert.Equal(t, ingestion.ColumnTypeCurrency, col.Type)
		assert.Equal(t, "numeric", col.Type.Tag())
		assert.Equal(t, []float64{10.5, 3}, floats(col.Values))
	})

	t.Run("dates", func(t *testing.T) {
		col := c.CoerceColumn(column("day", "2023-01-15", "", "2023-02-01"))
		assert.Equal(t, ingestion.ColumnTypeDate, col.Type)
		assert.Equal(t, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), col.Values[0].AsTime())
		assert.True(t, col.Values[1].IsMissing())
	})

	t.Run("text kept verbatim", func(t *testing.T) {
		col := c.CoerceColumn(column("name", " Alice ", "Bob"))
		assert.Equal(t, ingestion.ColumnTypeText, col.Type)
		assert.Equal(t, " Alice ", col.Values[0].AsString())
	})

	t.Run("empty column untouched", func(t *testing.T) {
		col := c.CoerceColumn(column("blank", "", ""))
		assert.Equal(t, ingestion.ColumnTypeText, col.Type)
		assert.True(t, col.Values[0].IsMissing())
	})
}

func TestCoerceColumn_PerValueFailureDegradesCell(t *testing.T) {
	// sample of 2 classifies as numeric; the unparseable tail value becomes missing
	c := NewTypeCoercer(CoercionConfig{SampleSize: 2})
	col := c.CoerceColumn(column("qty", "1", "2", "three"))

	require.Len(t, col.Values, 3)
	assert.Equal(t, 2.0, col.Values[1].AsFloat64())
	assert.True(t, col.Values[2].IsMissing())
}

func TestCoerce_NeverPanics(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	inputs := [][]string{
		{"", "", ""},
		{"-", ".", "-."},
		{"1e400", "NaN", "%"},
		{"$", "USD", "$ USD"},
		{"99/99/9999", "2023-13-45", "00-00-0000"},
		{"\x00", "☃", "🙂 12"},
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			c.CoerceColumn(column("x", in...))
		})
	}
}

func TestCoerce_DoesNotMutateInput(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	table := &ingestion.CleanedTable{Columns: []ingestion.Column{column("n", "1", "2")}, Rows: 2}

	out := c.Coerce(table)

	assert.Equal(t, ingestion.ValueTypeText, table.Columns[0].Values[0].Type)
	assert.Equal(t, ingestion.ValueTypeNumeric, out.Columns[0].Values[0].Type)
	assert.Equal(t, 2, out.Rows)
}

func TestCoerce_NumberCells(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	col := ingestion.Column{Name: "n", Values: []ingestion.Value{
		ingestion.NewNumericValue(1.5), ingestion.NewMissingValue(), ingestion.NewNumericValue(-2),
	}}

	out := c.CoerceColumn(col)

	assert.Equal(t, ingestion.ColumnTypeNumeric, out.Type)
	assert.Equal(t, -2.0, out.Values[2].AsFloat64())
}
