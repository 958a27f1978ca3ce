package insights

import (
	"errors"
	"sort"

	"datagent/domain/datareadiness/ingestion"
	"datagent/domain/datareadiness/profiling"
)

// TopValues is the number of most frequent values kept per text column
const TopValues = 10

// ErrNoColumns is returned for a table without columns
var ErrNoColumns = errors.New("table has no columns")

// Analyzer computes descriptive statistics over a cleaned table
type Analyzer struct {
	bins int
}

// NewAnalyzer creates an analyzer; non-positive bins use DefaultHistogramBins
func NewAnalyzer(bins int) *Analyzer {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}
	return &Analyzer{bins: bins}
}

// Analyze computes summary statistics and distributions for numeric columns,
// pairwise correlations between them, and value frequencies for text columns
func (a *Analyzer) Analyze(table *ingestion.CleanedTable) (*profiling.Insights, error) {
	if table == nil || len(table.Columns) == 0 {
		return nil, ErrNoColumns
	}

	result := profiling.NewInsights()
	var numeric []ingestion.Column

	for _, col := range table.Columns {
		switch {
		case col.Type.IsNumeric():
			data := numbers(col.Values)
			if len(data) == 0 {
				continue
			}
			summary, err := summarize(data)
			if err != nil {
				return nil, err
			}
			result.SummaryStats[col.Name] = summary
			result.DataDistribution[col.Name] = distribution(data, a.bins)
			numeric = append(numeric, col)
		case col.Type == ingestion.ColumnTypeText:
			result.UniqueCounts[col.Name] = topValues(col.Values, TopValues)
		}
	}

	if len(numeric) > 1 {
		for _, x := range numeric {
			row := make(map[string]*float64, len(numeric))
			for _, y := range numeric {
				xs, ys := pairwise(x.Values, y.Values)
				row[y.Name] = correlation(xs, ys)
			}
			result.Correlations[x.Name] = row
		}
	}

	return result, nil
}

func numbers(values []ingestion.Value) []float64 {
	data := make([]float64, 0, len(values))
	for _, v := range values {
		if v.IsNumber() {
			data = append(data, v.AsFloat64())
		}
	}
	return data
}

// pairwise keeps the rows where both values are numbers
func pairwise(x, y []ingestion.Value) ([]float64, []float64) {
	n := min(len(x), len(y))
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if x[i].IsNumber() && y[i].IsNumber() {
			xs = append(xs, x[i].AsFloat64())
			ys = append(ys, y[i].AsFloat64())
		}
	}
	return xs, ys
}

// topValues returns the most frequent non-missing values, count descending
// then value ascending
func topValues(values []ingestion.Value, limit int) []profiling.ValueCount {
	counts := make(map[string]int)
	for _, v := range values {
		if !v.IsMissing() {
			counts[v.String()]++
		}
	}

	out := make([]profiling.ValueCount, 0, len(counts))
	for value, count := range counts {
		out = append(out, profiling.ValueCount{Value: value, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
