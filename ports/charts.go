package ports

import (
	"datagent/domain/chart"
	"datagent/domain/datareadiness/ingestion"
)

// ChartRenderer draws cleaned tables as plotly figures
type ChartRenderer interface {
	// Render never returns an error; failures are carried in the result
	Render(table *ingestion.CleanedTable, spec chart.Spec) chart.Result

	// Suggest proposes charts for the given columns
	Suggest(table *ingestion.CleanedTable, columns []string) []chart.Suggestion
}
