package http

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/couchcryptid/flood-dashboard/internal/adapter/chart"
	"github.com/couchcryptid/flood-dashboard/internal/pipeline"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// EmptyNotice is shown in place of a block when no records match the filters.
const EmptyNotice = "No data for the selected filters."

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"fontSize": func(weight float64) string {
		return strconv.FormatFloat(12+36*weight, 'f', 1, 64) + "px"
	},
	"thousands": thousands,
}).ParseFS(templateFS, "templates/dashboard.html"))

// chartPanel is one image block on the page: an SVG data URI or a notice.
type chartPanel struct {
	Title  string
	Src    template.URL
	Notice string
}

type pageData struct {
	D              *pipeline.Dashboard
	Charts         []chartPanel
	SelectedCauses map[string]bool
	CounterMillis  int64
	WordNotice     string
	QueryError     string
	EmptyNotice    string
	ExportCSV      template.URL
	ExportXLSX     template.URL
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	// Malformed parameters fall back to the dataset defaults.
	q, qerr := parseQuery(r.URL.Query())

	d, err := s.dashboards.Render(r.Context(), q)
	if err != nil {
		s.logger.Error("dashboard unavailable", "error", err)
		http.Error(w, "Dataset unavailable. Check the service logs.", http.StatusServiceUnavailable)
		return
	}

	data := pageData{
		D:              d,
		Charts:         s.charts(d),
		SelectedCauses: make(map[string]bool, len(d.Criteria.Causes)),
		CounterMillis:  s.opts.CounterAnimation.Milliseconds(),
		WordNotice:     panelNotice(d, pipeline.BlockWordCloud),
		EmptyNotice:    EmptyNotice,
		ExportCSV:      exportLink("/export.csv", r.URL.Query()),
		ExportXLSX:     exportLink("/export.xlsx", r.URL.Query()),
	}
	for _, c := range d.Criteria.Causes {
		data.SelectedCauses[c] = true
	}
	if qerr != nil {
		data.QueryError = qerr.Error()
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("render page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// charts renders every image block. A failing chart only affects its own panel.
func (s *Server) charts(d *pipeline.Dashboard) []chartPanel {
	builders := []struct {
		block string
		title string
		draw  func() ([]byte, error)
	}{
		{pipeline.BlockTimeSeries, "Flood Events Over Time", func() ([]byte, error) { return chart.TimeSeries(d.TimeSeries) }},
		{pipeline.BlockCauses, "Distribution of Main Causes", func() ([]byte, error) { return chart.Causes(d.Causes) }},
		{pipeline.BlockHistogram, "Distribution of Flood Duration", func() ([]byte, error) { return chart.Histogram(d.Histogram) }},
		{pipeline.BlockBoxPlot, "Fatalities and Injuries", func() ([]byte, error) { return chart.BoxPlot(d.BoxPlot) }},
		{pipeline.BlockScatter, "Duration vs Human Injured", func() ([]byte, error) { return chart.Scatter(d.Scatter) }},
		{pipeline.BlockCorrelation, "Correlation Heatmap", func() ([]byte, error) { return chart.Heatmap(d.Correlation) }},
	}

	panels := make([]chartPanel, 0, len(builders))
	for _, b := range builders {
		p := chartPanel{Title: b.title}
		if notice := panelNotice(d, b.block); notice != "" {
			p.Notice = notice
			panels = append(panels, p)
			continue
		}
		svg, err := drawSafely(b.draw)
		switch {
		case errors.Is(err, chart.ErrNoData):
			p.Notice = EmptyNotice
		case err != nil:
			s.logger.Warn("chart failed", "block", b.block, "error", err)
			p.Notice = "Error: " + err.Error()
		default:
			p.Src = chart.DataURI(svg)
		}
		panels = append(panels, p)
	}
	return panels
}

// panelNotice returns the notice for block: its render error, or the empty
// placeholder when nothing matched.
func panelNotice(d *pipeline.Dashboard, block string) string {
	p := d.Panel(block)
	switch {
	case p.Notice != "":
		return p.Notice
	case p.Empty:
		return EmptyNotice
	default:
		return ""
	}
}

// exportLink carries the current selection over to an export route.
func exportLink(path string, values url.Values) template.URL {
	if len(values) == 0 {
		return template.URL(path) //nolint:gosec // constant path
	}
	return template.URL(path + "?" + values.Encode()) //nolint:gosec // re-encoded query
}

func drawSafely(draw func() ([]byte, error)) (svg []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return draw()
}

func thousands(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}
