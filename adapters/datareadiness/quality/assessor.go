package quality

import (
	"math"
	"strings"

	"datagent/domain/datareadiness/ingestion"
	"datagent/domain/datareadiness/profiling"
)

// Assessor computes the quality report of a cleaned table
type Assessor struct{}

// NewAssessor creates an assessor
func NewAssessor() *Assessor {
	return &Assessor{}
}

// Assess computes completeness, duplicate rows, type consistency and missing counts
func (a *Assessor) Assess(table *ingestion.CleanedTable) profiling.QualityReport {
	report := profiling.QualityReport{
		RowCount:              table.Rows,
		TypeConsistency:       make(map[string]profiling.Consistency),
		MissingValuesByColumn: make(map[string]int, len(table.Columns)),
	}

	missing := 0
	for _, col := range table.Columns {
		colMissing := 0
		for i := 0; i < table.Rows; i++ {
			if i >= len(col.Values) || col.Values[i].IsMissing() {
				colMissing++
			}
		}
		missing += colMissing
		report.MissingValuesByColumn[col.Name] = colMissing

		if consistency, ok := typeConsistency(col.Values); ok {
			report.TypeConsistency[col.Name] = consistency
		}
	}

	report.Completeness = Completeness(missing, table.Rows*len(table.Columns))
	report.DuplicateRows = DuplicateRows(table)
	return report
}

// Completeness returns round((1 - missing/total) * 100), or 0 for an empty table
func Completeness(missing, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round((1 - float64(missing)/float64(total)) * 100))
}

// DuplicateRows counts rows equal to an earlier row across all columns
func DuplicateRows(table *ingestion.CleanedTable) int {
	seen := make(map[string][]int, table.Rows)
	duplicates := 0
	for i := 0; i < table.Rows; i++ {
		key := rowKey(table, i)
		isDuplicate := false
		for _, j := range seen[key] {
			if rowsEqual(table, i, j) {
				isDuplicate = true
				break
			}
		}
		if isDuplicate {
			duplicates++
			continue
		}
		seen[key] = append(seen[key], i)
	}
	return duplicates
}

// rowKey is a hash bucket for a row; rowsEqual settles collisions
func rowKey(table *ingestion.CleanedTable, row int) string {
	var b strings.Builder
	for _, col := range table.Columns {
		v := valueAt(col, row)
		b.WriteString(string(v.Type))
		b.WriteByte(0)
		b.WriteString(v.String())
		b.WriteByte(0)
	}
	return b.String()
}

func rowsEqual(table *ingestion.CleanedTable, a, b int) bool {
	for _, col := range table.Columns {
		if !valueAt(col, a).Equal(valueAt(col, b)) {
			return false
		}
	}
	return true
}

func valueAt(col ingestion.Column, row int) ingestion.Value {
	if row < len(col.Values) {
		return col.Values[row]
	}
	return ingestion.NewMissingValue()
}

func typeConsistency(values []ingestion.Value) (profiling.Consistency, bool) {
	var kind ingestion.Kind
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		if kind == "" {
			kind = v.Kind()
		} else if v.Kind() != kind {
			return profiling.Mixed, true
		}
	}
	if kind == "" {
		return "", false
	}
	return profiling.Consistent, true
}
