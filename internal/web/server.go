package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/justestif/moodtunes/internal/logger"
)

// DefaultMaxUploadBytes bounds request bodies when ServerConfig leaves it unset.
const DefaultMaxUploadBytes = 10 << 20

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr           string
	MaxUploadBytes int64
	Logger         *logger.Logger
}

// Server is the HTTP server for the JSON API.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
	log      *logger.Logger
}

// NewServer creates a new web server serving h.
func NewServer(cfg ServerConfig, h *Handlers) *Server {
	log := logger.OrNop(cfg.Logger)
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	h.maxBody = cfg.MaxUploadBytes

	s := &Server{
		router:   chi.NewRouter(),
		handlers: h,
		log:      log,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(requestID)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.log))
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handlers.Health)

		r.Route("/emotion", func(r chi.Router) {
			r.Post("/text", s.handlers.PredictText)
			r.Post("/upload", s.handlers.PredictUpload)
			r.Post("/stream", s.handlers.PredictStream)
		})

		r.Get("/moods", s.handlers.ListMoods)
		r.Get("/genres", s.handlers.ListGenres)
		r.Get("/genres/fallback", s.handlers.GenreFallback)
		r.Get("/recommendations", s.handlers.Recommendations)
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting server", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.log.Info("server stopped")
	return nil
}
