// Package chart renders dashboard blocks as SVG images with gonum/plot.
package chart

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"image/color"
	"strconv"

	"github.com/couchcryptid/flood-dashboard/internal/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoData is returned when a block has nothing to draw.
var ErrNoData = errors.New("no data to plot")

const (
	width  = 6 * vg.Inch
	height = 4 * vg.Inch
)

var (
	primary   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	secondary = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	neutral   = color.Gray{Y: 90}
)

// DataURI wraps an SVG document for use as an <img> src.
func DataURI(svg []byte) template.URL {
	return template.URL("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg)) //nolint:gosec // generated SVG, not user input
}

// TimeSeries draws flood events per year as a line.
func TimeSeries(series []domain.YearCount) ([]byte, error) {
	if len(series) == 0 {
		return nil, ErrNoData
	}
	p := newPlot("Flood Events Over Time", "Year", "Number of Flood Events")

	pts := make(plotter.XYs, len(series))
	for i, yc := range series {
		pts[i] = plotter.XY{X: float64(yc.Year), Y: float64(yc.Count)}
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, fmt.Errorf("time series line: %w", err)
	}
	line.Color = primary
	line.Width = vg.Points(1.5)
	points.Color = primary
	p.Add(line, points)
	return render(p)
}

// Causes draws the event count per main cause as bars.
func Causes(dist []domain.CauseCount) ([]byte, error) {
	if len(dist) == 0 {
		return nil, ErrNoData
	}
	p := newPlot("Distribution of Main Causes", "Main Cause", "Count")

	values := make(plotter.Values, len(dist))
	names := make([]string, len(dist))
	for i, cc := range dist {
		values[i] = float64(cc.Count)
		names[i] = cc.Cause
	}
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return nil, fmt.Errorf("cause bars: %w", err)
	}
	bars.Color = primary
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = 0.6
	p.X.Tick.Label.XAlign = draw.XRight
	return render(p)
}

// Histogram draws the duration bins with the density estimate overlaid.
func Histogram(h domain.Histogram) ([]byte, error) {
	if len(h.Bins) == 0 {
		return nil, ErrNoData
	}
	p := newPlot("Distribution of Flood Duration", "Duration (days)", "Frequency")

	bins := make([]plotter.HistogramBin, len(h.Bins))
	for i, b := range h.Bins {
		bins[i] = plotter.HistogramBin{Min: b.Low, Max: b.High, Weight: float64(b.Count)}
	}
	hist := &plotter.Histogram{
		Bins:      bins,
		Width:     h.Bins[len(h.Bins)-1].High - h.Bins[0].Low,
		FillColor: primary,
		LineStyle: plotter.DefaultLineStyle,
	}
	p.Add(hist)

	if len(h.Density) > 0 {
		pts := make(plotter.XYs, len(h.Density))
		for i, d := range h.Density {
			pts[i] = plotter.XY{X: d.X, Y: d.Y}
		}
		kde, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("density line: %w", err)
		}
		kde.Color = secondary
		kde.Width = vg.Points(1.5)
		p.Add(kde)
	}
	return render(p)
}

// Scatter draws duration against human injuries.
func Scatter(points []domain.Point) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}
	p := newPlot("Duration vs Human Injured", "Duration (days)", "Human Injured")

	pts := make(plotter.XYs, len(points))
	for i, pt := range points {
		pts[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("scatter: %w", err)
	}
	s.GlyphStyle.Color = primary
	s.GlyphStyle.Radius = vg.Points(3)
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(s)
	return render(p)
}

// BoxPlot draws one box per casualty series from precomputed statistics.
func BoxPlot(b domain.BoxPlot) ([]byte, error) {
	if len(b.Series) == 0 {
		return nil, ErrNoData
	}
	p := newPlot("Fatalities and Injuries", "", "Count")

	names := make([]string, len(b.Series))
	for i, s := range b.Series {
		names[i] = s.Field
	}
	p.Add(&boxes{series: b.Series})
	p.NominalX(names...)
	return render(p)
}

// Heatmap draws the correlation matrix with each cell annotated.
func Heatmap(m domain.CorrelationMatrix) ([]byte, error) {
	if len(m.Values) == 0 {
		return nil, ErrNoData
	}
	p := newPlot("Correlation Heatmap", "", "")

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)
	hm := plotter.NewHeatMap(grid(m), cmap.Palette(64))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.Gray{Y: 220}
	p.Add(hm)

	var labels plotter.XYLabels
	for i, row := range m.Values {
		for j, c := range row {
			text := "n/a"
			if c.Defined() {
				text = strconv.FormatFloat(float64(c), 'f', 2, 64)
			}
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(j), Y: float64(i)})
			labels.Labels = append(labels.Labels, text)
		}
	}
	annotations, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, fmt.Errorf("heatmap labels: %w", err)
	}
	for i := range annotations.TextStyle {
		annotations.TextStyle[i].XAlign = draw.XCenter
		annotations.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(annotations)
	p.NominalX(m.Fields...)
	p.NominalY(m.Fields...)
	return render(p)
}

// grid adapts a correlation matrix to plotter.GridXYZ. Row 0 is drawn at the bottom.
type grid domain.CorrelationMatrix

func (g grid) Dims() (c, r int) { return len(g.Values), len(g.Values) }
func (g grid) Z(c, r int) float64 { return float64(g.Values[r][c]) }
func (g grid) X(c int) float64 { return float64(c) }
func (g grid) Y(r int) float64 { return float64(r) }

func newPlot(title, x, y string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = x
	p.Y.Label.Text = y
	return p
}

func render(p *plot.Plot) ([]byte, error) {
	wt, err := p.WriterTo(width, height, "svg")
	if err != nil {
		return nil, fmt.Errorf("create svg writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write svg: %w", err)
	}
	return buf.Bytes(), nil
}

// boxes draws Tukey boxes from summary statistics at nominal x positions 0..n-1.
type boxes struct {
	series []domain.BoxStats
}

func (b *boxes) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	half := vg.Points(18)

	box := plotter.DefaultLineStyle
	box.Color = neutral
	median := box
	median.Color = secondary
	median.Width = vg.Points(2)
	outlier := draw.GlyphStyle{Color: neutral, Radius: vg.Points(2.5), Shape: draw.RingGlyph{}}

	for i, s := range b.series {
		if s.N == 0 {
			continue
		}
		x := trX(float64(i))
		q1, q3, med := trY(s.Q1), trY(s.Q3), trY(s.Median)
		lo, hi := trY(s.WhiskerLow), trY(s.WhiskerHigh)

		c.StrokeLines(box, []vg.Point{
			{X: x - half, Y: q1}, {X: x + half, Y: q1},
			{X: x + half, Y: q3}, {X: x - half, Y: q3},
			{X: x - half, Y: q1},
		})
		c.StrokeLine2(median, x-half, med, x+half, med)
		c.StrokeLine2(box, x, q1, x, lo)
		c.StrokeLine2(box, x, q3, x, hi)
		c.StrokeLine2(box, x-half/2, lo, x+half/2, lo)
		c.StrokeLine2(box, x-half/2, hi, x+half/2, hi)
		for _, o := range s.Outliers {
			c.DrawGlyph(outlier, vg.Point{X: x, Y: trY(o)})
		}
	}
}

func (b *boxes) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = -0.5, float64(len(b.series))-0.5
	first := true
	for _, s := range b.series {
		if s.N == 0 {
			continue
		}
		if first || s.Min < ymin {
			ymin = s.Min
		}
		if first || s.Max > ymax {
			ymax = s.Max
		}
		first = false
	}
	if ymin == ymax {
		ymin--
		ymax++
	}
	return xmin, xmax, ymin, ymax
}
