package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ignite/mailblast/internal/pkg/logger"
)

// Server wraps the HTTP listener with sane timeouts. Write timeout stays
// generous because a send run streams progress for its full duration.
type Server struct {
	httpServer *http.Server
}

// NewServer builds the listener for the given router.
func NewServer(host string, port int, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      30 * time.Minute,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
