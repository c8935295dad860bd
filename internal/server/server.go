// Package server exposes report metadata and artifacts over HTTP and lets a
// client trigger a job.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/gyeh/autoport/internal/model"
	"github.com/gyeh/autoport/internal/store"
)

const (
	DefaultLimit = 20
	MaxLimit     = 1000
)

// JobTrigger runs a job unless one is already in progress.
type JobTrigger interface {
	TryRunJob(ctx context.Context) (model.JobResult, bool)
}

type Server struct {
	log        zerolog.Logger
	store      store.Store
	jobs       JobTrigger
	reportsDir string

	// jobs outlive the request that started them
	baseCtx context.Context
}

// NewServer wires the handlers. jobs may be nil, which disables job
// triggering.
func NewServer(log zerolog.Logger, st store.Store, jobs JobTrigger, reportsDir string) *Server {
	return &Server{
		log:        log,
		store:      st,
		jobs:       jobs,
		reportsDir: reportsDir,
		baseCtx:    context.Background(),
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/reports", s.listReports)
		r.Post("/jobs", s.runJob)
	})
	r.Handle("/reports/*", http.StripPrefix("/reports/", http.FileServer(http.Dir(s.reportsDir))))

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	limit := DefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > MaxLimit {
			http.Error(w, "limit must be an integer between 1 and 1000", http.StatusBadRequest)
			return
		}
		limit = n
	}

	recs, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("list reports")
		http.Error(w, "failed to read report metadata", http.StatusInternalServerError)
		return
	}
	if recs == nil {
		recs = []model.ReportMetadata{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reports": recs,
		"count":   len(recs),
	})
}

func (s *Server) runJob(w http.ResponseWriter, r *http.Request) {
	if s.jobs == nil {
		http.Error(w, "job triggering is disabled", http.StatusNotImplemented)
		return
	}
	res, ok := s.jobs.TryRunJob(s.baseCtx)
	if !ok {
		http.Error(w, "a job is already running", http.StatusConflict)
		return
	}
	status := http.StatusOK
	if !res.Succeeded {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, res)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.baseCtx = ctx
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info().Str("addr", addr).Msg("starting report server")

	go func() {
		<-ctx.Done()
		s.log.Info().Msg("shutting down report server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
