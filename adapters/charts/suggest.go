package charts

import (
	"fmt"

	"datagent/domain/chart"
	"datagent/domain/datareadiness/ingestion"
)

// MaxSuggestions caps the number of proposed charts
const MaxSuggestions = 3

// Suggest proposes charts for the named columns from their resolved types:
// a trend line for date plus numeric, bar and box plots for text plus numeric,
// a scatter for two numeric columns and a histogram for a single one.
// Unknown column names are ignored.
func (r *Renderer) Suggest(table *ingestion.CleanedTable, names []string) []chart.Suggestion {
	var temporal, numeric, categorical []string
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		col, ok := table.Column(name)
		if !ok {
			continue
		}
		switch {
		case col.Type == ingestion.ColumnTypeDate:
			temporal = append(temporal, name)
		case col.Type.IsNumeric():
			numeric = append(numeric, name)
		case col.Type == ingestion.ColumnTypeText:
			categorical = append(categorical, name)
		}
	}

	var out []chart.Suggestion
	if len(temporal) > 0 && len(numeric) > 0 {
		out = append(out, chart.Suggestion{
			Type:    chart.TypeLine,
			Columns: append([]string{temporal[0]}, numeric...),
			Title:   "Trend over time",
		})
	}
	if len(categorical) > 0 && len(numeric) > 0 {
		cat, num := categorical[0], numeric[0]
		out = append(out,
			chart.Suggestion{Type: chart.TypeBar, Columns: []string{cat, num}, Title: fmt.Sprintf("%s by %s", num, cat)},
			chart.Suggestion{Type: chart.TypeBox, Columns: []string{cat, num}, Title: fmt.Sprintf("Distribution of %s by %s", num, cat)},
		)
	}
	switch {
	case len(numeric) >= 2:
		out = append(out, chart.Suggestion{
			Type:    chart.TypeScatter,
			Columns: numeric[:2],
			Title:   fmt.Sprintf("Correlation between %s and %s", numeric[0], numeric[1]),
		})
	case len(numeric) == 1:
		out = append(out, chart.Suggestion{
			Type:    chart.TypeHistogram,
			Columns: numeric,
			Title:   "Distribution of " + numeric[0],
		})
	}

	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}
