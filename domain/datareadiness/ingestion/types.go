package ingestion

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Value represents a typed cell value after coercion
type Value struct {
	Type         ValueType
	StringVal    *string
	NumericVal   *float64
	TimestampVal *time.Time
}

// ValueType is the closed set of value variants a cleaned cell can hold
type ValueType string

const (
	ValueTypeMissing    ValueType = "missing"
	ValueTypeText       ValueType = "text"
	ValueTypeNumeric    ValueType = "numeric"
	ValueTypePercentage ValueType = "percentage" // fraction, 0.25 for "25%"
	ValueTypeCurrency   ValueType = "currency"
	ValueTypeDate       ValueType = "date"
)

// Kind is the underlying storage kind of a value, used for type consistency checks
type Kind string

const (
	KindMissing Kind = "missing"
	KindText    Kind = "text"
	KindNumber  Kind = "number"
	KindDate    Kind = "date"
)

// NewTextValue creates a text value. Empty strings are missing.
func NewTextValue(s string) Value {
	if s == "" {
		return NewMissingValue()
	}
	return Value{Type: ValueTypeText, StringVal: &s}
}

// NewNumericValue creates a plain numeric value
func NewNumericValue(n float64) Value {
	return newNumber(ValueTypeNumeric, n)
}

// NewPercentageValue creates a percentage value from a fraction
func NewPercentageValue(fraction float64) Value {
	return newNumber(ValueTypePercentage, fraction)
}

// NewCurrencyValue creates a currency amount
func NewCurrencyValue(amount float64) Value {
	return newNumber(ValueTypeCurrency, amount)
}

func newNumber(t ValueType, n float64) Value {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return NewMissingValue()
	}
	return Value{Type: t, NumericVal: &n}
}

// NewDateValue creates a date value
func NewDateValue(t time.Time) Value {
	return Value{Type: ValueTypeDate, TimestampVal: &t}
}

// NewMissingValue creates a missing value
func NewMissingValue() Value {
	return Value{Type: ValueTypeMissing}
}

// IsMissing reports whether the value carries no data
func (v Value) IsMissing() bool {
	return v.Kind() == KindMissing
}

// Kind collapses the value type to its storage kind
func (v Value) Kind() Kind {
	switch v.Type {
	case ValueTypeText:
		if v.StringVal != nil {
			return KindText
		}
	case ValueTypeNumeric, ValueTypePercentage, ValueTypeCurrency:
		if v.NumericVal != nil {
			return KindNumber
		}
	case ValueTypeDate:
		if v.TimestampVal != nil {
			return KindDate
		}
	}
	return KindMissing
}

// IsNumber returns true if the value holds any numeric variant
func (v Value) IsNumber() bool {
	return v.Kind() == KindNumber
}

// AsFloat64 returns the numeric value, or 0 if not numeric
func (v Value) AsFloat64() float64 {
	if v.NumericVal != nil {
		return *v.NumericVal
	}
	return 0.0
}

// AsString returns the text value, or empty string if not text
func (v Value) AsString() string {
	if v.StringVal != nil {
		return *v.StringVal
	}
	return ""
}

// AsTime returns the date value, or the zero time if not a date
func (v Value) AsTime() time.Time {
	if v.TimestampVal != nil {
		return *v.TimestampVal
	}
	return time.Time{}
}

// String returns the textual form used by the classifiers
func (v Value) String() string {
	switch v.Kind() {
	case KindText:
		return *v.StringVal
	case KindNumber:
		return strconv.FormatFloat(*v.NumericVal, 'f', -1, 64)
	case KindDate:
		return formatDate(*v.TimestampVal)
	}
	return ""
}

// Equal reports whether two values hold the same variant and payload.
// Missing values are equal to each other.
func (v Value) Equal(other Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	switch v.Kind() {
	case KindText:
		return *v.StringVal == *other.StringVal
	case KindNumber:
		return v.Type == other.Type && *v.NumericVal == *other.NumericVal
	case KindDate:
		return v.TimestampVal.Equal(*other.TimestampVal)
	}
	return true
}

// Interface returns the value as a plain Go value (nil when missing)
func (v Value) Interface() interface{} {
	switch v.Kind() {
	case KindText:
		return *v.StringVal
	case KindNumber:
		return *v.NumericVal
	case KindDate:
		return formatDate(*v.TimestampVal)
	}
	return nil
}

// MarshalJSON renders text as a string, numbers as numbers, dates as ISO strings
// and missing values as null.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}
