package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/yungbote/shariabridge-backend/internal/platform/logger"
)

type Server struct {
	srv             *http.Server
	log             *logger.Logger
	shutdownTimeout time.Duration
}

func NewServer(addr string, shutdownTimeout time.Duration, cfg RouterConfig) *Server {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log:             log.With("component", "http"),
		shutdownTimeout: shutdownTimeout,
	}
}

func (s *Server) Handler() http.Handler { return s.srv.Handler }

// OnShutdown registers fn to run when shutdown begins, typically to end
// long-lived streams.
func (s *Server) OnShutdown(fn func()) { s.srv.RegisterOnShutdown(fn) }

// Run serves until ctx is cancelled, then drains in-flight requests for up to
// the shutdown timeout. SSE streams end with their request contexts.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()
	s.log.Info("HTTP server shutting down", "timeout", s.shutdownTimeout.String())
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
