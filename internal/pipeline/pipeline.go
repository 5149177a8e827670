package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-dashboard/internal/domain"
	"github.com/couchcryptid/flood-dashboard/internal/observability"
)

// Block names, in render order.
const (
	BlockMap         = "map"
	BlockCounters    = "counters"
	BlockTimeSeries  = "time_series"
	BlockCauses      = "cause_distribution"
	BlockHistogram   = "duration_histogram"
	BlockBoxPlot     = "casualty_boxplot"
	BlockScatter     = "duration_injured_scatter"
	BlockCorrelation = "correlation"
	BlockWordCloud   = "word_cloud"
)

// NoDetailsNotice is shown in place of the word cloud when the dataset has no Details column.
const NoDetailsNotice = "No Details Found!"

// Query is the raw sidebar selection. Nil years and an unset cause selection
// fall back to the dataset defaults.
type Query struct {
	StartYear *int
	EndYear   *int
	Location  string
	Causes    []string
	// CausesSet marks Causes as an explicit selection, possibly empty.
	CausesSet bool
}

// Panel is the render status of one block.
type Panel struct {
	Block  string `json:"block"`
	Empty  bool   `json:"empty"`
	Notice string `json:"notice,omitempty"`
	Err    error  `json:"-"`
}

// Dashboard is one complete render: the resolved criteria, the control
// bounds, and every block's artifact.
type Dashboard struct {
	Criteria    domain.FilterCriteria `json:"criteria"`
	MinYear     int                   `json:"min_year"`
	MaxYear     int                   `json:"max_year"`
	AllCauses   []string              `json:"all_causes"`
	Total       int                   `json:"total_records"`
	Matched     int                   `json:"matched_records"`
	GeneratedAt time.Time             `json:"generated_at"`

	Map         domain.MapView           `json:"map"`
	Counters    domain.Counters          `json:"counters"`
	TimeSeries  []domain.YearCount       `json:"time_series"`
	Causes      []domain.CauseCount      `json:"cause_distribution"`
	Histogram   domain.Histogram         `json:"duration_histogram"`
	BoxPlot     domain.BoxPlot           `json:"casualty_boxplot"`
	Scatter     []domain.Point           `json:"duration_injured_scatter"`
	Correlation domain.CorrelationMatrix `json:"correlation"`
	WordCloud   domain.WordCloud         `json:"word_cloud"`

	Panels []Panel `json:"panels"`
}

// Empty reports whether no records matched the criteria.
func (d *Dashboard) Empty() bool { return d.Matched == 0 }

// Panel returns the status of the named block.
func (d *Dashboard) Panel(block string) Panel {
	for _, p := range d.Panels {
		if p.Block == block {
			return p
		}
	}
	return Panel{Block: block}
}

// Options tune presentation defaults applied to rendered artifacts.
type Options struct {
	MapZoom int
}

// Pipeline filters the dataset and renders every block for one request.
type Pipeline struct {
	data    *DatasetHandle
	opts    Options
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Pipeline reading from data.
func New(data *DatasetHandle, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		data:    data,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once the dataset has been loaded.
func (p *Pipeline) CheckReadiness(ctx context.Context) error {
	return p.data.CheckReadiness(ctx)
}

// Dataset returns the loaded dataset.
func (p *Pipeline) Dataset(ctx context.Context) (*domain.Dataset, error) {
	return p.data.Get(ctx)
}

// Resolve fills the defaults of q from ds: full year range and every observed cause.
func Resolve(ds *domain.Dataset, q Query) domain.FilterCriteria {
	c := domain.DefaultCriteria(ds)
	if q.StartYear != nil {
		c.StartYear = *q.StartYear
	}
	if q.EndYear != nil {
		c.EndYear = *q.EndYear
	}
	c.Location = q.Location
	if q.CausesSet || len(q.Causes) > 0 {
		c.Causes = append([]string{}, q.Causes...)
	}
	return c
}

// Filter resolves q against the dataset and returns the matching view.
func (p *Pipeline) Filter(ctx context.Context, q Query) (*domain.FilteredView, error) {
	ds, err := p.data.Get(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Filter(ds, Resolve(ds, q)), nil
}

// Render resolves q, filters the dataset and builds every block. A failing block is
// reported on its panel and never aborts the others; only a dataset load
// failure is returned as an error.
func (p *Pipeline) Render(ctx context.Context, q Query) (*Dashboard, error) {
	start := time.Now()
	ds, err := p.data.Get(ctx)
	if err != nil {
		return nil, err
	}

	criteria := Resolve(ds, q)
	view := domain.Filter(ds, criteria)
	minYear, maxYear := ds.YearBounds()

	d := &Dashboard{
		Criteria:    criteria,
		MinYear:     minYear,
		MaxYear:     maxYear,
		AllCauses:   ds.Causes(),
		Total:       ds.Len(),
		Matched:     view.Len(),
		GeneratedAt: domain.Now(),
	}

	for _, b := range p.blocks() {
		d.Panels = append(d.Panels, p.runBlock(b.name, view, b.build(d, view)))
	}

	p.metrics.Renders.Inc()
	p.metrics.FilteredRecords.Observe(float64(view.Len()))
	p.metrics.RenderDuration.Observe(time.Since(start).Seconds())
	p.logger.Debug("dashboard rendered",
		"start_year", criteria.StartYear,
		"end_year", criteria.EndYear,
		"location", criteria.Location,
		"causes", len(criteria.Causes),
		"matched", view.Len(),
	)
	return d, nil
}

type block struct {
	name  string
	build func(d *Dashboard, v *domain.FilteredView) func() error
}

func (p *Pipeline) blocks() []block {
	return []block{
		{BlockMap, func(d *Dashboard, v *domain.FilteredView) func() error {
			return func() error {
				d.Map = domain.BuildMap(v)
				if p.opts.MapZoom > 0 {
					d.Map.Zoom = p.opts.MapZoom
				}
				return nil
			}
		}},
		{BlockCounters, func(d *Dashboard, v *domain.FilteredView) func() error {
			return func() error { d.Counters = domain.BuildCounters(v); return nil }
		}},
		{BlockTimeSeries, func(d *Dashboard, v *domain.FilteredView) func() error {
			return func() error { d.TimeSeries = domain.BuildTimeSeries(v); return nil }
		}},
		{BlockCauses, func(d *Dashboard, v *domain.FilteredView) func() error {
			return func() error { d.Causes = domain.BuildCauseDistribution(v); return nil }
		}},
		{BlockHistogram, func(d *Dashboard, v *domain.FilteredView) func() error {
			return func() error { d.Histogram = domain.BuildDurationHistogram(v); return nil }
		}},
		{BlockBoxPlot, func(d *Dashboard, v *domain.FilteredView) func() error {
			return func() error { d.BoxPlot = domain.BuildCasualtyBoxPlot(v); return nil }
		}},
		{BlockScatter, func(d *Dashboard, v *domain.FilteredView) func() error {
			return func() error { d.Scatter = domain.BuildDurationInjuredScatter(v); return nil }
		}},
		{BlockCorrelation, func(d *Dashboard, v *domain.FilteredView) func() error {
			return func() error { d.Correlation = domain.BuildCorrelationMatrix(v); return nil }
		}},
		{BlockWordCloud, func(d *Dashboard, v *domain.FilteredView) func() error {
			return func() error {
				wc, err := domain.BuildWordCloud(v)
				d.WordCloud = wc
				return err
			}
		}},
	}
}

// runBlock executes one block, converting an error or panic into the panel's notice.
func (p *Pipeline) runBlock(name string, view *domain.FilteredView, fn func() error) Panel {
	panel := Panel{Block: name, Empty: view.Empty()}

	err := guard(fn)
	if err == nil {
		return panel
	}

	panel.Err = err
	if domain.IsMissingColumn(err, domain.ColDetails) {
		panel.Notice = NoDetailsNotice
		p.logger.Info("block skipped", "block", name, "reason", err)
		return panel
	}

	panel.Notice = "Error: " + err.Error()
	p.metrics.BlockFailures.WithLabelValues(name).Inc()
	p.logger.Warn("block failed", "block", name, "error", err)
	return panel
}

// guard runs fn and converts a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("panic: %w", e)
				return
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// IsLoadError reports whether err came from loading the dataset.
func IsLoadError(err error) bool {
	var dle *domain.DataLoadError
	return errors.As(err, &dle)
}
