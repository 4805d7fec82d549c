// Package http runs the landing server's HTTP listener and its graceful
// shutdown.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/cortexos/landing/internal/logging"
)

// DefaultShutdownTimeout bounds how long in-flight requests may run after
// shutdown starts.
const DefaultShutdownTimeout = 10 * time.Second

// Server handles the HTTP listener lifecycle for one handler.
//
// Listen binds the address; Start serves until the context is cancelled and
// then drains connections. The listener is created eagerly so callers can
// report bind failures before anything else starts.
type Server struct {
	addr            string
	shutdownTimeout time.Duration
	logger          logging.Logger

	mu         sync.RWMutex
	httpServer *http.Server
	listener   net.Listener
	isShutdown bool
}

// Option configures a Server.
type Option func(*Server)

// WithShutdownTimeout overrides DefaultShutdownTimeout.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a server that will listen on addr and serve handler.
func NewServer(addr string, handler http.Handler, opts ...Option) *Server {
	if handler == nil {
		panic("Server: handler cannot be nil")
	}

	s := &Server{
		addr:            addr,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	s.logger = s.logger.WithComponent("server")

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Listen binds the configured address. It is called by Start when needed.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isShutdown {
		return errors.New("server has been shut down")
	}
	if s.listener != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.listener = ln
	return nil
}

// Start serves until ctx is cancelled or the server fails. It returns nil
// after a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.mu.RLock()
	server, ln := s.httpServer, s.listener
	s.mu.RUnlock()

	errChan := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("serve: %w", err)
		}
		close(errChan)
	}()

	s.logger.Info(ctx, "listening", "addr", ln.Addr().String())

	select {
	case <-ctx.Done():
		// ctx is already done, so shutdown gets a fresh deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		s.logger.Info(shutdownCtx, "shutting down", "timeout", s.shutdownTimeout)
		return s.Shutdown(shutdownCtx)

	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return err
	}
}

// Shutdown stops accepting connections and waits for active requests. It is
// safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isShutdown {
		return nil
	}
	s.isShutdown = true

	if s.listener == nil {
		return nil
	}
	err := s.httpServer.Shutdown(ctx)
	// Serve may not have taken ownership of the listener yet.
	_ = s.listener.Close()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Addr returns the bound address once listening, else the configured one.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// IsShutdown returns whether the server has been shut down
func (s *Server) IsShutdown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isShutdown
}
