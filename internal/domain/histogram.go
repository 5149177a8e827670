package domain

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// HistogramBins is the fixed number of duration bins.
	HistogramBins = 20
	// kdeGridSize is the number of points the density curve is evaluated at.
	kdeGridSize = 200
)

// Bin is one histogram bar covering [Low, High). The last bin also includes High.
type Bin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Histogram is the duration distribution block. Density holds the Gaussian
// KDE curve scaled to bin counts; it is empty when fewer than two distinct
// durations exist.
type Histogram struct {
	Bins    []Bin   `json:"bins"`
	Density []Point `json:"density"`
	Samples int     `json:"samples"`
}

// BuildDurationHistogram bins the non-NaN durations of v into HistogramBins
// equal-width bins over [min, max] and overlays a kernel density estimate
// with Scott's bandwidth.
func BuildDurationHistogram(v *FilteredView) Histogram {
	h := Histogram{Bins: make([]Bin, 0), Density: make([]Point, 0)}
	values := durations(v)
	if len(values) == 0 {
		return h
	}
	h.Samples = len(values)

	lo, hi := minMax(values)
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	width := (hi - lo) / HistogramBins

	h.Bins = make([]Bin, HistogramBins)
	for i := range h.Bins {
		h.Bins[i] = Bin{Low: lo + float64(i)*width, High: lo + float64(i+1)*width}
	}
	h.Bins[HistogramBins-1].High = hi
	for _, x := range values {
		i := int((x - lo) / width)
		if i >= HistogramBins {
			i = HistogramBins - 1
		}
		if i < 0 {
			i = 0
		}
		h.Bins[i].Count++
	}

	h.Density = kde(values, lo, hi, width)
	return h
}

// kde evaluates a Gaussian kernel density estimate of values over [lo, hi],
// scaled by n*binWidth so it overlays raw counts.
func kde(values []float64, lo, hi, binWidth float64) []Point {
	n := len(values)
	if n < 2 {
		return make([]Point, 0)
	}
	sd := stat.StdDev(values, nil)
	if sd == 0 || math.IsNaN(sd) {
		return make([]Point, 0)
	}
	bw := sd * math.Pow(float64(n), -0.2)
	scale := float64(n) * binWidth

	kernel := distuv.Normal{Mu: 0, Sigma: bw}
	curve := make([]Point, kdeGridSize)
	step := (hi - lo) / float64(kdeGridSize-1)
	for i := range curve {
		x := lo + float64(i)*step
		var sum float64
		for _, xi := range values {
			sum += kernel.Prob(x - xi)
		}
		curve[i] = Point{X: x, Y: sum / float64(n) * scale}
	}
	return curve
}

func minMax(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, x := range values[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}
