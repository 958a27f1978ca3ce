package coercer

import (
	"strconv"
	"strings"

	"datagent/adapters/datareadiness/classifier"
	"datagent/domain/datareadiness/ingestion"
)

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	SampleSize int `json:"sample_size"` // leading non-empty values inspected per column
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{SampleSize: classifier.DefaultSampleSize}
}

type coerceFunc func(ingestion.Value) ingestion.Value

// TypeCoercer classifies each column and rewrites its values into typed values
type TypeCoercer struct {
	config     CoercionConfig
	classifier *classifier.Classifier
	dispatch   map[ingestion.ColumnType]coerceFunc
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	return &TypeCoercer{
		config:     config,
		classifier: classifier.New(config.SampleSize),
		dispatch: map[ingestion.ColumnType]coerceFunc{
			ingestion.ColumnTypeDate:       coerceDate,
			ingestion.ColumnTypeNumeric:    coerceNumeric,
			ingestion.ColumnTypePercentage: coercePercentage,
			ingestion.ColumnTypeCurrency:   coerceCurrency,
			ingestion.ColumnTypeText:       coerceText,
		},
	}
}

// Coerce returns a new table with every classifiable column coerced.
// Columns with no values are copied untouched and typed as text.
func (c *TypeCoercer) Coerce(table *ingestion.CleanedTable) *ingestion.CleanedTable {
	out := &ingestion.CleanedTable{
		Columns: make([]ingestion.Column, len(table.Columns)),
		Rows:    table.Rows,
	}
	for i, col := range table.Columns {
		out.Columns[i] = c.CoerceColumn(col)
	}
	return out
}

// CoerceColumn classifies a single column and coerces its values
func (c *TypeCoercer) CoerceColumn(col ingestion.Column) ingestion.Column {
	values := make([]ingestion.Value, len(col.Values))
	columnType, ok := c.classifier.Classify(col.Values)
	if !ok {
		copy(values, col.Values)
		return ingestion.Column{Name: col.Name, Original: col.Original, Type: ingestion.ColumnTypeText, Values: values}
	}

	coerce := c.dispatch[columnType]
	for i, v := range col.Values {
		values[i] = safeCoerce(coerce, v)
	}

	return ingestion.Column{
		Name:     col.Name,
		Original: col.Original,
		Type:     resolveType(columnType, values),
		Values:   values,
	}
}

// safeCoerce degrades a single value to missing if its coercion panics
func safeCoerce(coerce coerceFunc, v ingestion.Value) (out ingestion.Value) {
	if v.IsMissing() {
		return v
	}
	defer func() {
		if recover() != nil {
			out = ingestion.NewMissingValue()
		}
	}()
	return coerce(v)
}

// resolveType refines a numeric classification when every coerced value
// carries the same unit marker
func resolveType(classified ingestion.ColumnType, values []ingestion.Value) ingestion.ColumnType {
	if classified != ingestion.ColumnTypeNumeric {
		return classified
	}
	var unit ingestion.ValueType
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		if unit == "" {
			unit = v.Type
		} else if v.Type != unit {
			return classified
		}
	}
	switch unit {
	case ingestion.ValueTypePercentage:
		return ingestion.ColumnTypePercentage
	case ingestion.ValueTypeCurrency:
		return ingestion.ColumnTypeCurrency
	}
	return classified
}

func coerceDate(v ingestion.Value) ingestion.Value {
	if v.Kind() == ingestion.KindDate {
		return v
	}
	if t, ok := classifier.ParseDate(v.String()); ok {
		return ingestion.NewDateValue(t)
	}
	return ingestion.NewMissingValue()
}

func coerceNumeric(v ingestion.Value) ingestion.Value {
	if v.IsNumber() {
		return v
	}
	s := strings.TrimSpace(v.String())
	switch {
	case strings.HasSuffix(s, "%"):
		return coercePercentage(v)
	case strings.HasPrefix(s, "$") || strings.HasSuffix(s, "USD"):
		return coerceCurrency(v)
	}
	if f, ok := classifier.ParseStrippedFloat(s); ok {
		return ingestion.NewNumericValue(f)
	}
	return ingestion.NewMissingValue()
}

func coercePercentage(v ingestion.Value) ingestion.Value {
	if v.IsNumber() {
		return ingestion.NewPercentageValue(v.AsFloat64() / 100)
	}
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v.String()), "%"))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return ingestion.NewMissingValue()
	}
	return ingestion.NewPercentageValue(f / 100)
}

func coerceCurrency(v ingestion.Value) ingestion.Value {
	if v.IsNumber() {
		return ingestion.NewCurrencyValue(v.AsFloat64())
	}
	if f, ok := classifier.ParseStrippedFloat(v.String()); ok {
		return ingestion.NewCurrencyValue(f)
	}
	return ingestion.NewMissingValue()
}

func coerceText(v ingestion.Value) ingestion.Value {
	return v
}
