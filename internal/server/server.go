// Package server exposes workbooks over HTTP: upload a workbook, then fetch
// its sheets as HTML tables, Chart.js configurations, PNG charts or GeoJSON.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/klytics/sheetviz/internal/logging"
)

// Options configures a Server.
type Options struct {
	Addr string
	// MaxUploadMB caps the size of an uploaded workbook.
	MaxUploadMB int
	// MonthKeywords locate the month column when a request names none.
	MonthKeywords []string
	Logger        *zap.Logger
}

// DefaultMaxUploadMB is used when Options.MaxUploadMB is not positive.
const DefaultMaxUploadMB = 10

const shutdownTimeout = 5 * time.Second

// Server serves the workbook API.
type Server struct {
	opts   Options
	store  *Store
	logger *zap.Logger
}

// New returns a server with an empty workbook store.
func New(opts Options) *Server {
	if opts.MaxUploadMB <= 0 {
		opts.MaxUploadMB = DefaultMaxUploadMB
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Server{opts: opts, store: NewStore(), logger: opts.Logger}
}

// Store returns the server's workbook store.
func (s *Server) Store() *Store { return s.store }

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logging.Middleware(s.logger, "/api/health"))

	r.Get("/api/health", s.handleHealth)
	r.Route("/api/workbooks", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleUpload)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDelete)
			r.Get("/sheets", s.handleSheets)
			r.Route("/sheets/{sheet}", func(r chi.Router) {
				r.Get("/table", s.handleTable)
				r.Get("/months", s.handleMonths)
				r.Get("/chart", s.handleChart)
				r.Get("/chart.png", s.handleChartPNG)
				r.Get("/map", s.handleMap)
			})
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.opts.Addr), zap.Int("max_upload_mb", s.opts.MaxUploadMB))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("graceful shutdown failed", zap.Error(err))
		return srv.Close()
	}
	return nil
}
