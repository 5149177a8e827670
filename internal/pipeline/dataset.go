package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/flood-dashboard/internal/domain"
	"github.com/couchcryptid/flood-dashboard/internal/observability"
)

// DatasetHandle loads the dataset at most once and hands every caller the
// same immutable *domain.Dataset, or the same load error.
type DatasetHandle struct {
	loader   domain.DatasetLoader
	geocoder domain.Geocoder
	logger   *slog.Logger
	metrics  *observability.Metrics

	once   sync.Once
	ds     *domain.Dataset
	err    error
	loaded atomic.Bool
}

// NewDatasetHandle creates a handle over loader. A non-nil geocoder
// reverse-geocodes record coordinates as part of the load.
func NewDatasetHandle(loader domain.DatasetLoader, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *DatasetHandle {
	return &DatasetHandle{
		loader:   loader,
		geocoder: geocoder,
		logger:   logger,
		metrics:  metrics,
	}
}

// Get returns the dataset, loading it on first use. The load runs detached
// from ctx cancellation so an aborted request cannot poison the cached result.
func (h *DatasetHandle) Get(ctx context.Context) (*domain.Dataset, error) {
	h.once.Do(func() {
		h.ds, h.err = h.load(context.WithoutCancel(ctx))
		h.loaded.Store(h.err == nil)
	})
	return h.ds, h.err
}

func (h *DatasetHandle) load(ctx context.Context) (*domain.Dataset, error) {
	start := time.Now()
	ds, err := h.loader.Load(ctx)
	if err != nil {
		h.metrics.DatasetLoadErrors.Inc()
		h.logger.Error("dataset load failed", "error", err)
		return nil, err
	}

	if h.geocoder != nil {
		ds = domain.EnrichPlaces(ctx, ds, h.geocoder, h.logger)
	}

	h.metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	h.metrics.DatasetRecords.Set(float64(ds.Len()))
	h.logger.Info("dataset loaded",
		"source", ds.Source,
		"records", ds.Len(),
		"has_details", ds.HasDetails,
		"duration", time.Since(start),
	)
	return ds, nil
}

// CheckReadiness reports whether the dataset has been loaded successfully. It
// never triggers a load.
func (h *DatasetHandle) CheckReadiness(_ context.Context) error {
	if !h.loaded.Load() {
		return errors.New("dataset not loaded")
	}
	return nil
}
