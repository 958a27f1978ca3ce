package validator

import (
	"sort"
	"strings"

	"datagent/domain/datareadiness/ingestion"
)

var namePatterns = []struct {
	category string
	keywords []string
}{
	{"date", []string{"date", "time", "year", "month", "day"}},
	{"amount", []string{"price", "cost", "amount", "revenue", "sales"}},
	{"quantity", []string{"quantity", "units", "count", "number"}},
	{"location", []string{"country", "region", "city", "state", "location"}},
	{"product", []string{"product", "item", "sku", "category"}},
	{"customer", []string{"customer", "client", "account", "user"}},
}

func keywords(category string) []string {
	for _, p := range namePatterns {
		if p.category == category {
			return p.keywords
		}
	}
	return nil
}

// looksGenerated reports whether a column name was synthesized rather than read
func looksGenerated(name string) bool {
	return strings.Contains(name, "column_") || strings.Contains(name, "unnamed")
}

// SuggestColumnNames proposes candidate names for auto-generated columns from
// keywords found in the name and the column's resolved type. Advisory only.
func SuggestColumnNames(table *ingestion.CleanedTable) map[string][]string {
	suggestions := make(map[string][]string)
	for _, col := range table.Columns {
		if !looksGenerated(col.Name) {
			continue
		}

		set := make(map[string]struct{})
		add := func(names ...string) {
			for _, n := range names {
				set[n] = struct{}{}
			}
		}

		for _, p := range namePatterns {
			for _, kw := range p.keywords {
				if strings.Contains(col.Name, kw) {
					add(p.keywords...)
					break
				}
			}
		}

		switch col.Type {
		case ingestion.ColumnTypeDate:
			add(keywords("date")...)
		case ingestion.ColumnTypeNumeric, ingestion.ColumnTypeCurrency:
			add(keywords("amount")...)
			add(keywords("quantity")...)
		case ingestion.ColumnTypePercentage:
			add("percentage")
		}

		names := make([]string, 0, len(set))
		for n := range set {
			names = append(names, n)
		}
		sort.Strings(names)
		suggestions[col.Name] = names
	}
	return suggestions
}
