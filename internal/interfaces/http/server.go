package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/turtacn/claimtrack/internal/config"
	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/claimtrack/pkg/errors"
)

type Server struct {
	srv    *http.Server
	logger logging.Logger
}

func NewServer(cfg config.ServerConfig, handler http.Handler, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Server{
		logger: logger.Named("http"),
		srv: &http.Server{
			Addr:              cfg.Address(),
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Addr is the configured listen address.
func (s *Server) Addr() string { return s.srv.Addr }

// Start listens on the configured address and blocks until the server
// stops. A graceful Shutdown returns nil.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeServiceUnavailable, "failed to listen").WithDetail("addr=" + s.srv.Addr)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until the server stops.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("HTTP server listening", logging.String("addr", ln.Addr().String()))
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "http server failed")
	}
	return nil
}

// Shutdown drains in-flight requests until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if err := s.srv.Shutdown(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "server shutdown failed")
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
