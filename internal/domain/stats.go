package domain

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// quantile returns the p-quantile of sorted using linear interpolation between
// closest ranks (h = (n-1)p). sorted must be ascending and non-empty.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// pearson returns the Pearson correlation of x and y, or NaN when it is
// undefined (fewer than two pairs or a constant series).
func pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	_, sx := stat.MeanStdDev(x, nil)
	_, sy := stat.MeanStdDev(y, nil)
	if sx == 0 || sy == 0 || math.IsNaN(sx) || math.IsNaN(sy) {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

func sortedCopy(vs []float64) []float64 {
	out := make([]float64, len(vs))
	copy(out, vs)
	sort.Float64s(out)
	return out
}

// durations returns the non-NaN durations of v in record order.
func durations(v *FilteredView) []float64 {
	out := make([]float64, 0, v.Len())
	if v == nil {
		return out
	}
	for i := range v.Records {
		if v.Records[i].HasDuration() {
			out = append(out, v.Records[i].Duration)
		}
	}
	return out
}
