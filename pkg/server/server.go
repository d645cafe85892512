// Package server exposes drafts and their renderings over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /api/projects
//	POST /api/projects                       (editor graph body, generated id)
//	GET  /api/projects/{projectID}/draft
//	PUT  /api/projects/{projectID}/draft
//	POST /api/projects/{projectID}/save?page=N
//	GET  /api/projects/{projectID}/editor?page=N
//	GET  /api/projects/{projectID}/outline.svg?page=N&detailed=1
//	GET  /api/thumbnails?ids=a,b,c
//	GET  /sites/{projectID}
//	GET  /sites/{projectID}/pages/{page}
//	GET  /preview/{projectID}?page=N
//	GET  /thumbnails/{projectID}.{svg|png|json}
//
// The draft endpoints speak the storage.Response envelope, so a
// remote.Store pointed at this server is a working draft store.
//
// Storefront routes never show raw errors: a missing project renders a
// "not found" page and any other failure a "failed to load" page.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/config"
	"github.com/Zhatwoo/Cms-E-commerce-sub002/pkg/pipeline"
)

// maxBody caps request bodies of the save and draft endpoints.
const maxBody = 10 << 20

// Server serves the HTTP API over a pipeline.Runner.
type Server struct {
	runner *pipeline.Runner
	cfg    config.ServerConfig
	logger *log.Logger
	router chi.Router
}

// New creates a server. Zero fields of cfg take the config package defaults.
func New(runner *pipeline.Runner, cfg config.ServerConfig, logger *log.Logger) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	defaults := config.Default().Server
	if cfg.Addr == "" {
		cfg.Addr = defaults.Addr
	}
	if cfg.ReadTimeout.Duration == 0 {
		cfg.ReadTimeout = defaults.ReadTimeout
	}
	if cfg.WriteTimeout.Duration == 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}

	s := &Server{runner: runner, cfg: cfg, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/projects", s.handleListProjects)
		r.Post("/projects", s.handleCreateProject)
		r.Route("/projects/{projectID}", func(r chi.Router) {
			r.Get("/draft", s.handleGetDraft)
			r.Put("/draft", s.handlePutDraft)
			r.Post("/save", s.handleSave)
			r.Get("/editor", s.handleEditor)
			r.Get("/outline.svg", s.handleOutline)
		})
		r.Get("/thumbnails", s.handleThumbnailBatch)
	})

	r.Get("/sites/{projectID}", s.handleSite)
	r.Get("/sites/{projectID}/pages/{page}", s.handleSite)
	r.Get("/preview/{projectID}", s.handlePreview)
	r.Get("/thumbnails/{file}", s.handleThumbnail)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeFriendly(w, http.StatusNotFound, notFoundTitle, "There is nothing at this address.")
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout.Duration,
		WriteTimeout:      s.cfg.WriteTimeout.Duration,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// requestLogger logs one line per request.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			kv := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			}
			if status >= 500 {
				logger.Warn("request", kv...)
				return
			}
			logger.Info("request", kv...)
		})
	}
}
