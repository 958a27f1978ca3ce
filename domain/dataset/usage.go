package dataset

import (
	"sort"
	"strings"
)

const (
	// SimilarityThreshold is the Jaccard score a past query must exceed to be similar
	SimilarityThreshold = 0.3
	// SimilarityWindow is how many recent successful queries are compared
	SimilarityWindow = 100
	// SimilarLimit caps the number of similar queries returned
	SimilarLimit = 5

	recentQueries = 5
	errorExamples = 3
)

// QueryStats summarizes a dataset's query log
type QueryStats struct {
	TotalQueries      int     `json:"total_queries"`
	SuccessfulQueries int     `json:"successful_queries"`
	ErrorQueries      int     `json:"error_queries"`
	AvgExecutionTime  float64 `json:"avg_execution_time"`
}

// ErrorPattern groups failed queries by the error prefix before the first colon
type ErrorPattern struct {
	ErrorType      string   `json:"error_type"`
	Count          int      `json:"count"`
	ExampleQueries []string `json:"example_queries"`
}

// UsageInsights describes how a dataset has been queried
type UsageInsights struct {
	DatasetInfo   *Dataset       `json:"dataset_info"`
	QueryStats    QueryStats     `json:"query_stats"`
	RecentQueries []*QueryRecord `json:"recent_queries"`
	CommonErrors  []ErrorPattern `json:"common_errors"`
}

// ScoredQuery is a past query with its similarity to the current one
type ScoredQuery struct {
	*QueryRecord
	Similarity float64 `json:"similarity"`
}

func tokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}

// JaccardSimilarity compares the lower-cased whitespace tokens of two queries
func JaccardSimilarity(a, b string) float64 {
	ta, tb := tokens(a), tokens(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 0
	}
	shared := 0
	for w := range ta {
		if _, ok := tb[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(ta)+len(tb)-shared)
}

// SimilarQueries ranks candidates (newest first) by similarity to query,
// keeping those above SimilarityThreshold among the first SimilarityWindow
func SimilarQueries(query string, candidates []*QueryRecord) []ScoredQuery {
	if len(candidates) > SimilarityWindow {
		candidates = candidates[:SimilarityWindow]
	}
	var scored []ScoredQuery
	for _, c := range candidates {
		if s := JaccardSimilarity(query, c.QueryText); s > SimilarityThreshold {
			scored = append(scored, ScoredQuery{QueryRecord: c, Similarity: s})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if len(scored) > SimilarLimit {
		scored = scored[:SimilarLimit]
	}
	return scored
}

// BuildInsights summarizes a dataset's query log, given oldest first
func BuildInsights(ds *Dataset, queries []*QueryRecord) *UsageInsights {
	insights := &UsageInsights{
		DatasetInfo:   ds,
		RecentQueries: []*QueryRecord{},
		CommonErrors:  []ErrorPattern{},
	}

	var total float64
	var failed []*QueryRecord
	for _, q := range queries {
		total += float64(q.ExecutionTime)
		if q.Succeeded() {
			insights.QueryStats.SuccessfulQueries++
		} else {
			insights.QueryStats.ErrorQueries++
			failed = append(failed, q)
		}
	}
	insights.QueryStats.TotalQueries = len(queries)
	if len(queries) > 0 {
		insights.QueryStats.AvgExecutionTime = total / float64(len(queries))
	}

	start := max(0, len(queries)-recentQueries)
	insights.RecentQueries = append(insights.RecentQueries, queries[start:]...)
	insights.CommonErrors = append(insights.CommonErrors, commonErrors(failed)...)
	return insights
}

func commonErrors(failed []*QueryRecord) []ErrorPattern {
	index := make(map[string]int)
	var patterns []ErrorPattern
	for _, q := range failed {
		if q.ErrorMessage == "" {
			continue
		}
		kind, _, _ := strings.Cut(q.ErrorMessage, ":")
		i, ok := index[kind]
		if !ok {
			i = len(patterns)
			index[kind] = i
			patterns = append(patterns, ErrorPattern{ErrorType: kind})
		}
		patterns[i].Count++
		if len(patterns[i].ExampleQueries) < errorExamples {
			patterns[i].ExampleQueries = append(patterns[i].ExampleQueries, q.QueryText)
		}
	}
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Count > patterns[j].Count
	})
	return patterns
}
