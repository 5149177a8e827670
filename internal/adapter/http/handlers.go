package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/flood-dashboard/internal/domain"
	"github.com/couchcryptid/flood-dashboard/internal/pipeline"
	"github.com/go-chi/chi/v5/middleware"
)

const datasetUnavailable = "dataset unavailable"

// parseQuery reads the dashboard selection from URL parameters. Malformed
// years are reported in the error and left unset in the returned Query.
func parseQuery(values url.Values) (pipeline.Query, error) {
	var q pipeline.Query
	var errs []error

	q.StartYear, errs = parseYear(values, "start_year", errs)
	q.EndYear, errs = parseYear(values, "end_year", errs)
	q.Location = strings.TrimSpace(values.Get("location"))
	for _, c := range values["cause"] {
		if c = strings.TrimSpace(c); c != "" {
			q.Causes = append(q.Causes, c)
		}
	}
	q.CausesSet = values.Has("causes_set")

	return q, errors.Join(errs...)
}

func parseYear(values url.Values, key string, errs []error) (*int, []error) {
	s := strings.TrimSpace(values.Get(key))
	if s == "" {
		return nil, errs
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return nil, append(errs, fmt.Errorf("invalid %s %q: must be an integer", key, s))
	}
	return &y, errs
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	d, err := s.dashboards.Render(r.Context(), q)
	if err != nil {
		s.unavailable(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type recordsResponse struct {
	Criteria domain.FilterCriteria `json:"criteria"`
	Count    int                   `json:"count"`
	Records  []domain.FloodRecord  `json:"records"`
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	view, ok := s.filter(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, recordsResponse{
		Criteria: view.Criteria,
		Count:    view.Len(),
		Records:  view.Records,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		writeError(w, http.StatusNotImplemented, errors.New("export is not configured"))
		return
	}
	view, ok := s.filter(w, r)
	if !ok {
		return
	}
	exp, err := s.exporter.Export(r.Context(), view.Records)
	if err != nil {
		s.logger.Error("export failed", "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeError(w, http.StatusBadGateway, errors.New("export failed"))
		return
	}
	writeJSON(w, http.StatusAccepted, exp)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	view, ok := s.filter(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="floods.csv"`)
	if err := domain.WriteCSV(w, view.Records, view.HasDetails); err != nil {
		s.logger.Warn("csv export interrupted", "error", err)
	}
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	view, ok := s.filter(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="floods.xlsx"`)
	if err := writeWorkbook(w, view.Records, view.HasDetails); err != nil {
		s.logger.Warn("xlsx export interrupted", "error", err)
	}
}

// filter parses the query and filters the dataset, writing the error
// response itself when it returns false.
func (s *Server) filter(w http.ResponseWriter, r *http.Request) (*domain.FilteredView, bool) {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	view, err := s.dashboards.Filter(r.Context(), q)
	if err != nil {
		s.unavailable(w, r, err)
		return nil, false
	}
	return view, true
}

func (s *Server) unavailable(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("dashboard unavailable", "error", err, "request_id", middleware.GetReqID(r.Context()))
	writeError(w, http.StatusServiceUnavailable, errors.New(datasetUnavailable))
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeJSON encodes v before writing the status line, so a value that cannot
// be encoded yields a 500 instead of a truncated 200 body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"response encoding failed"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n')) //nolint:errcheck,gosec // best-effort response
}
