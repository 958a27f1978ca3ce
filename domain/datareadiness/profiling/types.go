package profiling

// Consistency describes whether a column holds a single underlying kind
type Consistency string

const (
	Consistent Consistency = "consistent"
	Mixed      Consistency = "mixed"
)

// QualityReport contains the data quality assessment of a cleaned sheet
type QualityReport struct {
	Completeness          int                    `json:"completeness"` // 0-100
	DuplicateRows         int                    `json:"duplicate_rows"`
	RowCount              int                    `json:"row_count"`
	TypeConsistency       map[string]Consistency `json:"type_consistency"`
	MissingValuesByColumn map[string]int         `json:"missing_values_by_column"`
}

// MixedColumns returns the columns flagged as mixed, in the given column order
func (q QualityReport) MixedColumns(order []string) []string {
	var mixed []string
	for _, name := range order {
		if q.TypeConsistency[name] == Mixed {
			mixed = append(mixed, name)
		}
	}
	return mixed
}

// SummaryStats mirrors a describe() row set for one numeric column
type SummaryStats struct {
	Count  int      `json:"count"`
	Mean   float64  `json:"mean"`
	StdDev *float64 `json:"std"`
	Min    float64  `json:"min"`
	Q25    float64  `json:"25%"`
	Median float64  `json:"50%"`
	Q75    float64  `json:"75%"`
	Max    float64  `json:"max"`
}

// Histogram holds bin counts and the len(counts)+1 bin edges
type Histogram struct {
	Counts []float64 `json:"counts"`
	Edges  []float64 `json:"edges"`
}

// Distribution describes the shape of a numeric column
type Distribution struct {
	Histogram Histogram `json:"histogram_data"`
	Skewness  *float64  `json:"skewness"` // nil when undefined
	Kurtosis  *float64  `json:"kurtosis"` // excess kurtosis, nil when undefined
}

// ValueCount represents a value and its frequency
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Insights contains best-effort descriptive statistics for a sheet
type Insights struct {
	SummaryStats     map[string]SummaryStats        `json:"summary_stats"`
	Correlations     map[string]map[string]*float64 `json:"correlations"`
	UniqueCounts     map[string][]ValueCount        `json:"unique_counts"`
	DataDistribution map[string]Distribution        `json:"data_distribution"`
}

// NewInsights creates an empty insights structure
func NewInsights() *Insights {
	return &Insights{
		SummaryStats:     make(map[string]SummaryStats),
		Correlations:     make(map[string]map[string]*float64),
		UniqueCounts:     make(map[string][]ValueCount),
		DataDistribution: make(map[string]Distribution),
	}
}
