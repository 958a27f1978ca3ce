package normalizer

import (
	"fmt"
	"regexp"
	"strings"

	"datagent/domain/datareadiness/ingestion"
)

// UnnamedMarker marks headers the reader synthesized for blank header cells
const UnnamedMarker = "Unnamed"

var (
	invalidNameChars = regexp.MustCompile(`[^A-Za-z0-9_]`)
	repeatedUnders   = regexp.MustCompile(`_+`)
)

// NormalizeName maps a header to lowercase [a-z0-9_], collapsing and trimming
// underscores. Headers with nothing left become "unnamed_column".
func NormalizeName(header string) string {
	name := invalidNameChars.ReplaceAllString(header, "_")
	name = repeatedUnders.ReplaceAllString(name, "_")
	name = strings.ToLower(strings.Trim(name, "_"))
	if name == "" {
		return "unnamed_column"
	}
	return name
}

// DisplayHeaders replaces unnamed headers with column_{index} and trims the rest
func DisplayHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		if strings.Contains(h, UnnamedMarker) {
			out[i] = fmt.Sprintf("column_%d", i)
		} else {
			out[i] = strings.TrimSpace(h)
		}
	}
	return out
}

// Disambiguate suffixes repeated names with _1, _2, ... keeping the first
// occurrence as is
func Disambiguate(names []string) []string {
	out := make([]string, len(names))
	used := make(map[string]bool, len(names))
	for i, name := range names {
		candidate := name
		for n := 1; used[candidate]; n++ {
			candidate = fmt.Sprintf("%s_%d", name, n)
		}
		used[candidate] = true
		out[i] = candidate
	}
	return out
}

// Normalize builds a new table from raw: blank headers renamed, empty rows and
// columns dropped, names normalized and made unique. Values are not coerced.
func Normalize(raw *ingestion.RawTable) *ingestion.CleanedTable {
	display := DisplayHeaders(raw.Headers)

	keepRows := make([]int, 0, raw.RowCount())
	for r := range raw.Rows {
		for c := range raw.Headers {
			if !raw.CellAt(r, c).IsEmpty() {
				keepRows = append(keepRows, r)
				break
			}
		}
	}

	var keepCols []int
	for c := range raw.Headers {
		for _, r := range keepRows {
			if !raw.CellAt(r, c).IsEmpty() {
				keepCols = append(keepCols, c)
				break
			}
		}
	}

	names := make([]string, len(keepCols))
	for i, c := range keepCols {
		names[i] = NormalizeName(display[c])
	}
	names = Disambiguate(names)

	table := &ingestion.CleanedTable{
		Columns: make([]ingestion.Column, len(keepCols)),
		Rows:    len(keepRows),
	}
	for i, c := range keepCols {
		values := make([]ingestion.Value, len(keepRows))
		for j, r := range keepRows {
			values[j] = raw.CellAt(r, c).Value()
		}
		table.Columns[i] = ingestion.Column{
			Name:     names[i],
			Original: display[c],
			Values:   values,
		}
	}
	return table
}
