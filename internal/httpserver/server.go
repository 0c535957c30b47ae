package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/angeloszaimis/solver-dispatch/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

// Server wraps http.Server with address validation and graceful shutdown.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// New creates a server for addr. The address is validated before anything
// is bound.
func New(addr string, handler http.Handler, log *slog.Logger) (*Server, error) {
	if err := validation.Validate(addr, validation.Required, validation.By(validateHostPort)); err != nil {
		return nil, err
	}

	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger.OrDiscard(log),
	}, nil
}

func (s *Server) Addr() string {
	return s.server.Addr
}

// Start listens until the server is shut down. A clean shutdown returns nil.
func (s *Server) Start() error {
	err := s.server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	s.logger.Info("Ops server listening", slog.String("address", s.server.Addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("Ops server shutting down")
		if err := s.Shutdown(context.Background()); err != nil {
			return err
		}
		return <-errCh
	}
}

// Shutdown gives in-flight requests up to five seconds to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cant be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}
