package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/flood-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/flood-dashboard/internal/domain"
	"github.com/couchcryptid/flood-dashboard/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dashboards renders and filters the flood dataset for a request.
type Dashboards interface {
	Render(ctx context.Context, q pipeline.Query) (*pipeline.Dashboard, error)
	Filter(ctx context.Context, q pipeline.Query) (*domain.FilteredView, error)
	CheckReadiness(ctx context.Context) error
}

// Exporter publishes a filtered view to a downstream topic.
type Exporter interface {
	Export(ctx context.Context, records []domain.FloodRecord) (kafka.Export, error)
}

// Options tune the dashboard page and API.
type Options struct {
	CounterAnimation   time.Duration
	CORSAllowedOrigins []string
}

// Server exposes the dashboard page, its JSON API, exports, and the
// health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	dashboards Dashboards
	exporter   Exporter
	opts       Options
	logger     *slog.Logger
}

// NewServer creates an HTTP server for dashboards. exporter may be nil, in
// which case POST /api/export answers 501.
func NewServer(addr string, dashboards Dashboards, exporter Exporter, opts Options, logger *slog.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		dashboards: dashboards,
		exporter:   exporter,
		opts:       opts,
		logger:     logger,
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/export.csv", s.handleExportCSV)
	r.Get("/export.xlsx", s.handleExportXLSX)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSAllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/records", s.handleRecords)
		r.Post("/export", s.handleExport)
	})

	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(dashboards))
	r.Handle("/metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
