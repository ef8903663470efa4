// Package server exposes the bookmark service as a small JSON API for local
// tools. It binds to localhost by default and has no authentication.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikbrunner/marks/internal/model"
	"github.com/nikbrunner/marks/internal/server/middleware"
	"github.com/nikbrunner/marks/internal/service"
)

// DefaultMaxBodyBytes caps request bodies, import uploads included.
const DefaultMaxBodyBytes = 10 << 20

// BookmarkServicer is what the handlers need from the bookmark service.
// *service.BookmarkService satisfies it.
type BookmarkServicer interface {
	List() []model.Bookmark
	Get(id string) (model.Bookmark, error)
	Create(input service.BookmarkInput) (model.Bookmark, error)
	Update(id string, input service.BookmarkInput) (model.Bookmark, error)
	Delete(id string) error
	Import(r io.Reader, opts service.ImportOptions) (service.ImportResult, error)
	Export(w io.Writer) error
	Theme() model.Theme
	SetTheme(theme model.Theme) error
}

// Server holds the handler dependencies.
type Server struct {
	svc          BookmarkServicer
	log          *slog.Logger
	maxBodyBytes int64
	corsOrigins  []string
}

// Option configures a Server.
type Option func(*Server)

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) { s.maxBodyBytes = n }
}

// WithCORSOrigins allows browser clients from origins to call the API.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

// New constructs a Server.
func New(svc BookmarkServicer, log *slog.Logger, opts ...Option) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{svc: svc, log: log, maxBodyBytes: DefaultMaxBodyBytes}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the router with middleware applied in order:
// CORS (only when origins are configured), RequestID, request logger,
// Recoverer, body size limit.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	if len(s.corsOrigins) > 0 {
		r.Use(middleware.NewCORSHandler(s.corsOrigins))
	}
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.NewSlogLogger(s.log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewMaxBodySizeHandler(s.maxBodyBytes))

	r.Get("/healthz", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/bookmarks", func(r chi.Router) {
			r.Get("/", s.listBookmarks)
			r.Post("/", s.createBookmark)
			r.Get("/{id}", s.getBookmark)
			r.Put("/{id}", s.updateBookmark)
			r.Delete("/{id}", s.deleteBookmark)
		})
		r.Post("/import", s.importBookmarks)
		r.Get("/export", s.exportBookmarks)
		r.Get("/theme", s.getTheme)
		r.Put("/theme", s.putTheme)
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully,
// giving in-flight requests up to 5 seconds.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("server stopped")
	return nil
}
