// Package api serves the latest aggregated dataset over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"

	"rental-aggregator/models"
	"rental-aggregator/services"
	"rental-aggregator/storage"
	"rental-aggregator/utils"
)

// RunFunc produces a fresh dataset. The pipeline's Run satisfies it.
type RunFunc func(ctx context.Context) (*models.Dataset, error)

// Deps wires the router to its collaborators.
type Deps struct {
	Store    storage.SnapshotStore
	Refresh  RunFunc
	Sinks    []storage.DatasetWriter
	Reporter *services.ReportService
	Logger   *utils.Logger

	// RateLimit is requests per minute per client IP; zero disables it.
	RateLimit int
}

type server struct {
	Deps
	refreshing sync.Mutex
}

// NewRouter builds the HTTP handler.
func NewRouter(d Deps) http.Handler {
	s := &server{Deps: d}

	r := chi.NewRouter()
	if d.RateLimit > 0 {
		r.Use(httprate.LimitByIP(d.RateLimit, 1*time.Minute))
	}
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"ok":true}`)) })
	r.Get("/listings", s.listListings)
	r.Get("/summary", s.summary)
	r.Post("/refresh", s.refresh)

	return r
}

func (s *server) listListings(w http.ResponseWriter, req *http.Request) {
	ds, ok := s.latest(w, req)
	if !ok {
		return
	}

	q := req.URL.Query()
	source := strings.TrimSpace(q.Get("source"))
	var maxPrice *int
	if v := q.Get("max_price"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, req, http.StatusBadRequest, "invalid_max_price", "max_price must be a non-negative integer")
			return
		}
		maxPrice = &n
	}

	out := make([]models.Listing, 0, len(ds.Listings))
	for _, l := range ds.Listings {
		if source != "" && !strings.EqualFold(l.Source, source) {
			continue
		}
		if maxPrice != nil && (l.Price == nil || *l.Price > *maxPrice) {
			continue
		}
		out = append(out, l)
	}

	render.JSON(w, req, map[string]any{
		"run_id":       ds.RunID,
		"generated_at": ds.GeneratedAt,
		"count":        len(out),
		"listings":     out,
	})
}

func (s *server) summary(w http.ResponseWriter, req *http.Request) {
	ds, ok := s.latest(w, req)
	if !ok {
		return
	}
	render.JSON(w, req, s.summaryBody(ds))
}

func (s *server) refresh(w http.ResponseWriter, req *http.Request) {
	if s.Refresh == nil {
		writeError(w, req, http.StatusNotImplemented, "refresh_disabled", "this server has no pipeline attached")
		return
	}
	if !s.refreshing.TryLock() {
		writeError(w, req, http.StatusConflict, "refresh_in_progress", "a refresh is already running")
		return
	}
	defer s.refreshing.Unlock()

	ds, err := s.Refresh(req.Context())
	if err != nil {
		s.Logger.Error("[api] refresh failed: %v", err)
		writeError(w, req, http.StatusInternalServerError, "refresh_failed", err.Error())
		return
	}

	if err := s.Store.Save(req.Context(), ds); err != nil {
		s.Logger.Error("[api] snapshot save failed: %v", err)
		writeError(w, req, http.StatusInternalServerError, "snapshot_failed", err.Error())
		return
	}
	for _, sink := range s.Sinks {
		if err := sink.Write(req.Context(), ds); err != nil {
			s.Logger.Warn("[api] sink write failed: %v", err)
		}
	}

	s.Logger.Info("[api] refresh %s -> %s", ds.RunID, ds.Summary.String())
	render.JSON(w, req, s.summaryBody(ds))
}

func (s *server) latest(w http.ResponseWriter, req *http.Request) (*models.Dataset, bool) {
	ds, err := s.Store.Latest(req.Context())
	if errors.Is(err, storage.ErrNoSnapshot) {
		writeError(w, req, http.StatusNotFound, "no_snapshot", "no dataset has been produced yet")
		return nil, false
	}
	if err != nil {
		s.Logger.Error("[api] snapshot read failed: %v", err)
		writeError(w, req, http.StatusServiceUnavailable, "snapshot_unavailable", err.Error())
		return nil, false
	}
	return ds, true
}

func (s *server) summaryBody(ds *models.Dataset) map[string]any {
	body := map[string]any{
		"run_id":        ds.RunID,
		"generated_at":  ds.GeneratedAt,
		"seed_fallback": ds.SeedFallback,
		"counts":        ds.Summary.Counts,
		"counts_line":   ds.Summary.String(),
	}
	if s.Reporter != nil {
		body["report"] = s.Reporter.Generate(ds)
	}
	return body
}

func writeError(w http.ResponseWriter, req *http.Request, status int, code, detail string) {
	render.Status(req, status)
	render.JSON(w, req, map[string]any{"error": code, "detail": detail})
}
