package charts

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/stat/sampleuv"

	"datagent/domain/chart"
	"datagent/domain/datareadiness/ingestion"
	"datagent/internal"
	"datagent/internal/config"
	"datagent/ports"
)

// ErrUnsupported is the message returned for unknown chart types
const ErrUnsupported = "Unsupported chart type"

var _ ports.ChartRenderer = (*Renderer)(nil)

type drawFunc func(r *Renderer, table *ingestion.CleanedTable, spec chart.Spec) ([]chart.Trace, error)

var drawers = map[chart.Type]drawFunc{
	chart.TypeLine:      (*Renderer).line,
	chart.TypeBar:       (*Renderer).bar,
	chart.TypeScatter:   (*Renderer).scatter,
	chart.TypePie:       (*Renderer).pie,
	chart.TypeHistogram: (*Renderer).histogram,
	chart.TypeBox:       (*Renderer).box,
	chart.TypeHeatmap:   (*Renderer).heatmap,
}

// Renderer builds plotly figures from cleaned tables
type Renderer struct {
	config config.VisualizationConfig
	logger *slog.Logger
}

// NewRenderer creates a renderer with the given visualization defaults
func NewRenderer(cfg config.VisualizationConfig, logger *slog.Logger) *Renderer {
	return &Renderer{config: cfg, logger: internal.LoggerOr(logger)}
}

// Render draws spec over table. Failures are reported in the result, never panicked.
func (r *Renderer) Render(table *ingestion.CleanedTable, spec chart.Spec) (result chart.Result) {
	draw, ok := drawers[spec.Type]
	if !ok {
		return chart.Failed(ErrUnsupported)
	}
	if table == nil {
		return chart.Failed("no data to plot")
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("chart rendering panicked", slog.String("type", string(spec.Type)), slog.Any("panic", rec))
			result = chart.Failed(fmt.Sprint(rec))
		}
	}()

	traces, err := draw(r, r.sample(table), spec)
	if err != nil {
		r.logger.Debug("chart rendering failed", slog.String("type", string(spec.Type)), slog.String("error", err.Error()))
		return chart.Failed(err.Error())
	}

	return chart.Result{
		Success: true,
		PlotData: &chart.Figure{
			Data:   traces,
			Layout: r.layout(spec.Title),
		},
		Type:        spec.Type,
		ColumnsUsed: spec.Columns,
	}
}

func (r *Renderer) layout(title string) chart.Layout {
	return chart.Layout{
		Title:    title,
		Height:   r.config.Height,
		Width:    r.config.Width,
		Template: r.config.Template,
		Margin:   chart.Margin{L: 50, R: 50, T: 50, B: 50},
	}
}

// sample keeps at most MaxRows rows, chosen reproducibly from the configured seed
// and kept in table order
func (r *Renderer) sample(table *ingestion.CleanedTable) *ingestion.CleanedTable {
	if r.config.MaxRows <= 0 || table.Rows <= r.config.MaxRows {
		return table
	}
	idxs := make([]int, r.config.MaxRows)
	seed := uint64(r.config.SampleSeed)
	sampleuv.WithoutReplacement(idxs, table.Rows, rand.NewPCG(seed, seed))
	sort.Ints(idxs)
	return table.SelectRows(idxs)
}

func columns(table *ingestion.CleanedTable, names []string, least int, kind chart.Type) ([]*ingestion.Column, error) {
	if len(names) < least {
		return nil, fmt.Errorf("%s chart requires at least %d columns", kind, least)
	}
	cols := make([]*ingestion.Column, len(names))
	for i, name := range names {
		c, ok := table.Column(name)
		if !ok {
			return nil, fmt.Errorf("column %q not found", name)
		}
		cols[i] = c
	}
	return cols, nil
}

func (r *Renderer) line(table *ingestion.CleanedTable, spec chart.Spec) ([]chart.Trace, error) {
	cols, err := columns(table, spec.Columns, 2, spec.Type)
	if err != nil {
		return nil, err
	}
	traces := make([]chart.Trace, 0, len(cols)-1)
	for _, y := range cols[1:] {
		traces = append(traces, chart.Trace{Type: "scatter", Mode: "lines", Name: y.Name, X: cols[0].Values, Y: y.Values})
	}
	return traces, nil
}

func (r *Renderer) bar(table *ingestion.CleanedTable, spec chart.Spec) ([]chart.Trace, error) {
	cols, err := columns(table, spec.Columns, 2, spec.Type)
	if err != nil {
		return nil, err
	}
	traces := make([]chart.Trace, 0, len(cols)-1)
	for _, v := range cols[1:] {
		t := chart.Trace{Type: "bar", Name: v.Name, Orientation: chart.Vertical, X: cols[0].Values, Y: v.Values}
		if spec.Options.Orientation == chart.Horizontal {
			t.Orientation = chart.Horizontal
			t.X, t.Y = v.Values, cols[0].Values
		}
		traces = append(traces, t)
	}
	return traces, nil
}

func (r *Renderer) scatter(table *ingestion.CleanedTable, spec chart.Spec) ([]chart.Trace, error) {
	cols, err := columns(table, spec.Columns, 2, spec.Type)
	if err != nil {
		return nil, err
	}
	t := chart.Trace{Type: "scatter", Mode: "markers", X: cols[0].Values, Y: cols[1].Values}
	if spec.Options.Color != "" || spec.Options.Size != "" {
		t.Marker = &chart.Marker{}
		if spec.Options.Color != "" {
			c, err := columns(table, []string{spec.Options.Color}, 1, spec.Type)
			if err != nil {
				return nil, err
			}
			t.Marker.Color = c[0].Values
		}
		if spec.Options.Size != "" {
			s, err := columns(table, []string{spec.Options.Size}, 1, spec.Type)
			if err != nil {
				return nil, err
			}
			t.Marker.Size = s[0].Values
		}
	}
	return []chart.Trace{t}, nil
}

func (r *Renderer) pie(table *ingestion.CleanedTable, spec chart.Spec) ([]chart.Trace, error) {
	cols, err := columns(table, spec.Columns, 2, spec.Type)
	if err != nil {
		return nil, err
	}
	return []chart.Trace{{Type: "pie", Values: cols[0].Values, Labels: cols[1].Values}}, nil
}

func (r *Renderer) histogram(table *ingestion.CleanedTable, spec chart.Spec) ([]chart.Trace, error) {
	cols, err := columns(table, spec.Columns[:min(1, len(spec.Columns))], 1, spec.Type)
	if err != nil {
		return nil, err
	}
	bins := spec.Options.Bins
	if bins <= 0 {
		bins = r.config.HistogramBins
	}
	return []chart.Trace{{Type: "histogram", Name: cols[0].Name, X: cols[0].Values, NBinsX: bins}}, nil
}

func (r *Renderer) box(table *ingestion.CleanedTable, spec chart.Spec) ([]chart.Trace, error) {
	cols, err := columns(table, spec.Columns, 1, spec.Type)
	if err != nil {
		return nil, err
	}
	if len(cols) == 1 {
		return []chart.Trace{{Type: "box", Name: cols[0].Name, X: cols[0].Values}}, nil
	}
	return []chart.Trace{{Type: "box", Name: cols[1].Name, X: cols[0].Values, Y: cols[1].Values}}, nil
}

// heatmap pivots the first column against the second, averaging the third
// column per cell or counting rows when only two columns are given
func (r *Renderer) heatmap(table *ingestion.CleanedTable, spec chart.Spec) ([]chart.Trace, error) {
	if len(spec.Columns) < 2 {
		return nil, errors.New("Heatmap requires at least 2 columns")
	}
	cols, err := columns(table, spec.Columns[:min(3, len(spec.Columns))], 2, spec.Type)
	if err != nil {
		return nil, err
	}

	rows, rowIndex := labels(cols[0].Values)
	xs, colIndex := labels(cols[1].Values)
	sums := make([][]float64, len(rows))
	counts := make([][]int, len(rows))
	for i := range rows {
		sums[i] = make([]float64, len(xs))
		counts[i] = make([]int, len(xs))
	}

	for k := 0; k < table.Rows; k++ {
		a, b := cols[0].Values[k], cols[1].Values[k]
		if a.IsMissing() || b.IsMissing() {
			continue
		}
		i, j := rowIndex[a.String()], colIndex[b.String()]
		if len(cols) == 3 {
			v := cols[2].Values[k]
			if !v.IsNumber() {
				continue
			}
			sums[i][j] += v.AsFloat64()
		}
		counts[i][j]++
	}

	z := make([][]*float64, len(rows))
	for i := range rows {
		z[i] = make([]*float64, len(xs))
		for j := range xs {
			if counts[i][j] == 0 {
				continue
			}
			cell := float64(counts[i][j])
			if len(cols) == 3 {
				cell = sums[i][j] / cell
			}
			z[i][j] = &cell
		}
	}

	return []chart.Trace{{Type: "heatmap", X: xs, Y: rows, Z: z}}, nil
}

// labels returns the sorted distinct non-missing values and their positions
func labels(values []ingestion.Value) ([]ingestion.Value, map[string]int) {
	seen := make(map[string]ingestion.Value)
	for _, v := range values {
		if !v.IsMissing() {
			seen[v.String()] = v
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]ingestion.Value, len(keys))
	index := make(map[string]int, len(keys))
	for i, k := range keys {
		out[i] = seen[k]
		index[k] = i
	}
	return out, index
}
