package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datagent/domain/datareadiness/ingestion"
)

func numericColumn(name string, vs ...float64) ingestion.Column {
	col := ingestion.Column{Name: name, Type: ingestion.ColumnTypeNumeric}
	for _, v := range vs {
		col.Values = append(col.Values, ingestion.NewNumericValue(v))
	}
	return col
}

func textColumn(name string, ss ...string) ingestion.Column {
	col := ingestion.Column{Name: name, Type: ingestion.ColumnTypeText}
	for _, s := range ss {
		col.Values = append(col.Values, ingestion.NewTextValue(s))
	}
	return col
}

func TestAnalyze(t *testing.T) {
	table := &ingestion.CleanedTable{
		Rows: 5,
		Columns: []ingestion.Column{
			textColumn("region", "north", "south", "north", "east", "north"),
			numericColumn("units", 1, 2, 3, 4, 5),
			numericColumn("revenue", 10, 20, 30, 40, 50),
			numericColumn("returns", 5, 4, 3, 2, 1),
		},
	}

	result, err := NewAnalyzer(0).Analyze(table)
	require.NoError(t, err)

	units := result.SummaryStats["units"]
	assert.Equal(t, 5, units.Count)
	assert.InDelta(t, 3.0, units.Mean, 1e-12)
	require.NotNil(t, units.StdDev)
	assert.InDelta(t, 1.5811388300841898, *units.StdDev, 1e-9)
	assert.Equal(t, 1.0, units.Min)
	assert.Equal(t, 3.0, units.Median)
	assert.Equal(t, 5.0, units.Max)
	assert.LessOrEqual(t, units.Min, units.Q25)
	assert.LessOrEqual(t, units.Q25, units.Median)
	assert.LessOrEqual(t, units.Median, units.Q75)
	assert.LessOrEqual(t, units.Q75, units.Max)

	require.NotNil(t, result.Correlations["units"]["revenue"])
	assert.InDelta(t, 1.0, *result.Correlations["units"]["revenue"], 1e-12)
	assert.InDelta(t, -1.0, *result.Correlations["units"]["returns"], 1e-12)
	assert.NotContains(t, result.Correlations, "region")

	regions := result.UniqueCounts["region"]
	require.Len(t, regions, 3)
	assert.Equal(t, "north", regions[0].Value)
	assert.Equal(t, 3, regions[0].Count)
	assert.Equal(t, "east", regions[1].Value)

	dist := result.DataDistribution["units"]
	require.NotNil(t, dist.Skewness)
	assert.InDelta(t, 0.0, *dist.Skewness, 1e-12)
	require.NotNil(t, dist.Kurtosis)
	assert.InDelta(t, -1.2, *dist.Kurtosis, 1e-9)
	assert.Len(t, dist.Histogram.Counts, DefaultHistogramBins)
	assert.Len(t, dist.Histogram.Edges, DefaultHistogramBins+1)
	total := 0.0
	for _, c := range dist.Histogram.Counts {
		total += c
	}
	assert.Equal(t, 5.0, total)
	assert.Equal(t, 1.0, dist.Histogram.Counts[DefaultHistogramBins-1], "max lands in the closed last bin")
}

func TestAnalyze_UndefinedStatistics(t *testing.T) {
	table := &ingestion.CleanedTable{
		Rows: 2,
		Columns: []ingestion.Column{
			numericColumn("constant", 7, 7),
			numericColumn("pair", 1, 2),
		},
	}

	result, err := NewAnalyzer(5).Analyze(table)
	require.NoError(t, err)

	assert.Nil(t, result.DataDistribution["pair"].Skewness)
	assert.Nil(t, result.DataDistribution["pair"].Kurtosis)
	assert.Nil(t, result.Correlations["constant"]["pair"])
	assert.Equal(t, []float64{0, 0, 2, 0, 0}, result.DataDistribution["constant"].Histogram.Counts)
}

func TestAnalyze_SingleValueHasNoStdDev(t *testing.T) {
	table := &ingestion.CleanedTable{
		Rows:    2,
		Columns: []ingestion.Column{numericColumn("n", 3), textColumn("t", "a")},
	}

	result, err := NewAnalyzer(0).Analyze(table)
	require.NoError(t, err)
	assert.Nil(t, result.SummaryStats["n"].StdDev)
	assert.Empty(t, result.Correlations)
}

func TestAnalyze_NoColumns(t *testing.T) {
	_, err := NewAnalyzer(0).Analyze(&ingestion.CleanedTable{})
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestTopValues_Limit(t *testing.T) {
	var values []ingestion.Value
	for _, s := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		values = append(values, ingestion.NewTextValue(s))
	}
	got := topValues(values, TopValues)
	assert.Len(t, got, TopValues)
	assert.Equal(t, "a", got[0].Value)
}
