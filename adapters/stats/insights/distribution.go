package insights

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"datagent/domain/datareadiness/profiling"
)

// DefaultHistogramBins is the number of equal-width bins per numeric column
const DefaultHistogramBins = 10

// summarize computes describe()-style statistics over non-empty data
func summarize(data []float64) (profiling.SummaryStats, error) {
	mean, err := stats.Mean(data)
	if err != nil {
		return profiling.SummaryStats{}, err
	}
	min, err := stats.Min(data)
	if err != nil {
		return profiling.SummaryStats{}, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return profiling.SummaryStats{}, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return profiling.SummaryStats{}, err
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	summary := profiling.SummaryStats{
		Count:  len(data),
		Mean:   mean,
		Min:    min,
		Q25:    stat.Quantile(0.25, stat.LinInterp, sorted, nil),
		Median: median,
		Q75:    stat.Quantile(0.75, stat.LinInterp, sorted, nil),
		Max:    max,
	}
	if len(data) > 1 {
		std, err := stats.StandardDeviationSample(data)
		if err != nil {
			return profiling.SummaryStats{}, err
		}
		summary.StdDev = finite(std)
	}
	return summary, nil
}

// distribution computes the histogram and shape of non-empty data
func distribution(data []float64, bins int) profiling.Distribution {
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	return profiling.Distribution{
		Histogram: histogram(sorted, bins),
		Skewness:  skewness(sorted),
		Kurtosis:  excessKurtosis(sorted),
	}
}

// histogram bins sorted data into equal-width bins over [min, max]; the last
// bin is closed. A constant column is spread over [v-0.5, v+0.5].
func histogram(sorted []float64, bins int) profiling.Histogram {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)

	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)
	return profiling.Histogram{Counts: counts, Edges: edges}
}

// skewness is the bias-corrected sample skewness, undefined below 3 values
// or for constant data
func skewness(data []float64) *float64 {
	if len(data) < 3 || stat.StdDev(data, nil) == 0 {
		return nil
	}
	return finite(stat.Skew(data, nil))
}

// excessKurtosis is the bias-corrected sample excess kurtosis, undefined below
// 4 values or for constant data
func excessKurtosis(data []float64) *float64 {
	if len(data) < 4 || stat.StdDev(data, nil) == 0 {
		return nil
	}
	return finite(stat.ExKurtosis(data, nil))
}

// correlation is the Pearson coefficient over pairwise complete observations
func correlation(x, y []float64) *float64 {
	if len(x) < 2 || stat.StdDev(x, nil) == 0 || stat.StdDev(y, nil) == 0 {
		return nil
	}
	return finite(stat.Correlation(x, y, nil))
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
