// Command flodd serves the flood event dashboard.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/flood-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/flood-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/flood-dashboard/internal/adapter/mapbox"
	"github.com/couchcryptid/flood-dashboard/internal/adapter/source"
	"github.com/couchcryptid/flood-dashboard/internal/config"
	"github.com/couchcryptid/flood-dashboard/internal/domain"
	"github.com/couchcryptid/flood-dashboard/internal/observability"
	"github.com/couchcryptid/flood-dashboard/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	loader, err := source.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to open dataset source", "source", cfg.DatasetSource(), "error", err)
		os.Exit(1)
	}
	defer loader.Close() //nolint:errcheck // process exit

	// The dataset is loaded once at startup; a bad dataset is fatal.
	handle := pipeline.NewDatasetHandle(loader, geocoder, logger, metrics)
	if _, err := handle.Get(ctx); err != nil {
		logger.Error("failed to load dataset", "source", cfg.DatasetSource(), "error", err)
		os.Exit(1) //nolint:gocritic // deferred cleanup is best-effort
	}

	p := pipeline.New(handle, pipeline.Options{MapZoom: cfg.MapZoom}, logger, metrics)

	var exporter httpadapter.Exporter
	var writer *kafkaadapter.Writer
	if cfg.KafkaExportEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger, metrics)
		exporter = writer
		logger.Info("kafka export enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaExportTopic)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, exporter, httpadapter.Options{
		CounterAnimation:   cfg.CounterAnimation,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
