// Package server wires the landing page handlers, the router selection and
// the live feed into a runnable HTTP server.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cortexos/landing/internal/config"
	httpserver "github.com/cortexos/landing/internal/http"
	"github.com/cortexos/landing/internal/landing"
	"github.com/cortexos/landing/internal/logging"
	"github.com/cortexos/landing/internal/middleware"
	"github.com/cortexos/landing/internal/stats"
	"github.com/spf13/afero"
)

// Server serves the landing page and its API.
type Server struct {
	cfg      *config.Config
	kind     Kind
	handlers *Handlers
	live     *LiveFeed
	handler  http.Handler
	runtime  *httpserver.Server
	logger   logging.Logger
}

// New builds a server from cfg. fsys backs every read the handlers make; the
// live feed always watches the real file system.
func New(cfg *config.Config, fsys afero.Fs, logger logging.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server: config cannot be nil")
	}
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if logger == nil {
		logger = logging.Discard()
	}

	ctx := context.Background()
	conv := cfg.Stats.Conventions()
	tracker := stats.NewTracker(fsys, stats.WithConventions(conv), stats.WithLogger(logger.WithComponent("stats")))

	handlers := NewHandlers(Dependencies{
		Fs:          fsys,
		Tracker:     tracker,
		Conventions: &conv,
		Layout:      landing.NewLayout(cfg.Paths.LandingDir),
		ProjectRoot: cfg.Paths.ProjectRoot,
		Changelog:   cfg.Paths.Changelog,
		Logger:      logger,
	})

	var live *LiveFeed
	var liveErr error
	if cfg.Server.Mode != config.ModeMinimal && cfg.Live.Enabled {
		live, liveErr = NewLiveFeed(LiveFeedConfig{
			Tracker:     tracker,
			Conventions: conv,
			ProjectRoot: cfg.Paths.ProjectRoot,
			Changelog:   cfg.Paths.Changelog,
			Debounce:    cfg.Live.Debounce,
			Logger:      logger,
		})
	}

	kind, err := SelectKind(cfg.Server.Mode, liveErr)
	if err != nil {
		return nil, err
	}
	if liveErr != nil {
		logger.Warn(ctx, liveErr, "live feed unavailable", "router", string(kind))
	}

	var routes http.Handler
	switch kind {
	case KindMinimal:
		routes = NewMinimalRouter(handlers)
	default:
		var ws http.Handler
		if live != nil {
			ws = live.Handler()
		}
		routes = NewFullRouter(handlers, ws)
	}

	s := &Server{
		cfg:      cfg,
		kind:     kind,
		handlers: handlers,
		live:     live,
		handler:  middleware.NewMiddlewareChain(logger).Apply(routes),
		logger:   logger.WithComponent("server"),
	}
	s.runtime = httpserver.NewServer(cfg.Server.Addr(), s.handler,
		httpserver.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		httpserver.WithLogger(logger),
	)
	return s, nil
}

// Kind returns the router in use.
func (s *Server) Kind() Kind {
	return s.kind
}

// Live reports whether the websocket feed is running.
func (s *Server) Live() bool {
	return s.live != nil
}

// Handler returns the complete handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Tracker returns the shared stats tracker.
func (s *Server) Tracker() *stats.Tracker {
	return s.handlers.Tracker()
}

// Listen binds the address so bind failures surface before Start.
func (s *Server) Listen() error {
	return s.runtime.Listen()
}

// Addr returns the bound address once listening.
func (s *Server) Addr() string {
	return s.runtime.Addr()
}

// Start refreshes the snapshot once, starts the live feed and serves until
// ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	snapshot := s.Tracker().Refresh(ctx, s.cfg.Paths.ProjectRoot)
	s.logger.Info(ctx, "stats loaded",
		"version", snapshot.Version,
		"test_files", snapshot.TestFiles,
		"builtin_plugins", snapshot.BuiltinPlugins,
	)

	if s.live != nil {
		if err := s.live.Start(ctx); err != nil {
			return fmt.Errorf("start live feed: %w", err)
		}
		defer func() {
			if err := s.live.Shutdown(context.Background()); err != nil {
				s.logger.Warn(ctx, err, "live feed shutdown")
			}
		}()
	}

	s.logger.Info(ctx, "starting", "router", string(s.kind), "live", s.live != nil)
	return s.runtime.Start(ctx)
}

// Close releases the live feed of a server that was never started.
func (s *Server) Close() error {
	if s.live == nil {
		return nil
	}
	return s.live.Shutdown(context.Background())
}

// Shutdown stops the listener and the live feed.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.runtime.Shutdown(ctx)
	if closeErr := s.Close(); err == nil {
		err = closeErr
	}
	return err
}
