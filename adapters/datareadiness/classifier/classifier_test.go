package classifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datagent/domain/datareadiness/ingestion"
)

func TestIsDate(t *testing.T) {
	tests := []struct {
		value    string
		expected bool
	}{
		{"2023-01-15", true},
		{"01/15/2023", true},
		{"01-15-2023", true},
		{"2023-01-15 10:30:00", true},
		{"Jan 15, 2023", true},
		{"100", false},
		{"12.5", false},
		{"Widget", false},
		{"hello world", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDate(tt.value))
		})
	}
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2023-01-15")
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), d)

	d, ok = ParseDate("03/04/2022")
	require.True(t, ok)
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 4, d.Day())

	_, ok = ParseDate("Widget")
	assert.False(t, ok)
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric("100"))
	assert.True(t, IsNumeric("-3.5"))
	assert.True(t, IsNumeric("$1,200.50"))
	assert.True(t, IsNumeric("10%"))
	assert.True(t, IsNumeric("42 units"))
	assert.False(t, IsNumeric("abc"))
	assert.False(t, IsNumeric("1-2-3"))
	assert.False(t, IsNumeric(""))
}

func TestIsPercentage(t *testing.T) {
	assert.True(t, IsPercentage("10%"))
	assert.True(t, IsPercentage("12.5 %"))
	assert.True(t, IsPercentage("42"))
	assert.False(t, IsPercentage("-5%"))
	assert.False(t, IsPercentage("ten percent"))
}

func TestIsCurrency(t *testing.T) {
	assert.True(t, IsCurrency("$100"))
	assert.True(t, IsCurrency("100.25"))
	assert.True(t, IsCurrency("100 USD"))
	assert.False(t, IsCurrency("$1,000"))
	assert.False(t, IsCurrency("EUR 100"))
}

func textValues(ss ...string) []ingestion.Value {
	values := make([]ingestion.Value, len(ss))
	for i, s := range ss {
		values[i] = ingestion.NewTextValue(s)
	}
	return values
}

func TestClassify(t *testing.T) {
	c := New(0)

	tests := []struct {
		name     string
		values   []ingestion.Value
		expected ingestion.ColumnType
	}{
		{"dates", textValues("2023-01-01", "2023-02-01"), ingestion.ColumnTypeDate},
		{"numbers", textValues("100", "200"), ingestion.ColumnTypeNumeric},
		{"percent strings are numeric first", textValues("10%", "20%"), ingestion.ColumnTypeNumeric},
		{"text", textValues("A", "B"), ingestion.ColumnTypeText},
		{"one bad value makes text", textValues("100", "n/a", "300"), ingestion.ColumnTypeText},
		{"missing values ignored", textValues("", "5", ""), ingestion.ColumnTypeNumeric},
		{"number cells", []ingestion.Value{ingestion.NewNumericValue(1), ingestion.NewNumericValue(2.5)}, ingestion.ColumnTypeNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Classify(tt.values)
			require.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestClassify_NoValues(t *testing.T) {
	_, ok := New(10).Classify(textValues("", ""))
	assert.False(t, ok)
}

func TestClassify_SampleLimit(t *testing.T) {
	c := New(2)
	// only the first two non-empty values are inspected
	got, ok := c.Classify(textValues("1", "", "2", "not a number"))
	require.True(t, ok)
	assert.Equal(t, ingestion.ColumnTypeNumeric, got)
	assert.Equal(t, []string{"1", "2"}, c.Sample(textValues("1", "", "2", "x")))
}
