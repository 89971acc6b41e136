package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgnsrekt/ttserve/internal/config"
	"github.com/dgnsrekt/ttserve/internal/speech"
)

// AudioProvider supplies audio bytes for a speech request. Implemented by
// speech.Coordinator.
type AudioProvider interface {
	Acquire(ctx context.Context, req speech.Request) ([]byte, error)
}

// Server handles HTTP API requests.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	server   *http.Server
	provider AudioProvider
}

// New creates a new API server.
func New(cfg *config.Config, logger *slog.Logger, provider AudioProvider) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
	}

	// Method checks live in the handlers so that unknown methods get the
	// same 404 as unknown paths.
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/audio/speech", s.withAuth(s.handleSpeech))
	mux.HandleFunc("/health", s.handleHealth)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.SynthTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
