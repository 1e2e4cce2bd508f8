package http

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simpol/pkg/errors"
)

// ServerConfig holds the listener settings.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server wraps http.Server with graceful shutdown.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	logger          logging.Logger
}

func NewServer(cfg ServerConfig, handler http.Handler, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 15 * time.Second
	}
	return &Server{
		srv: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       60 * time.Second,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger.Named("http.server"),
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.srv.Addr }

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start listens and serves until Stop.  A clean shutdown returns nil.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "listen failed").WithDetail(s.srv.Addr)
	}
	return s.Serve(ln)
}

// Serve serves on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("http server listening", logging.String("addr", ln.Addr().String()))
	if err := s.srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, errors.ErrCodeInternal, "http server failed")
	}
	return nil
}

// Stop drains in-flight requests for at most the shutdown timeout.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, errors.ErrCodeTimeout, "http server shutdown failed")
	}
	s.logger.Info("http server stopped")
	return nil
}

//Personal.AI order the ending
