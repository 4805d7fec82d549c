package server

import (
	"fmt"
	"net/http"

	"github.com/cortexos/landing/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/afero"
)

// Kind names the router a server runs.
type Kind string

const (
	KindFull    Kind = "full"
	KindMinimal Kind = "minimal"
)

// NewFullRouter registers every route on a chi router. live may be nil, in
// which case /ws is not registered.
func NewFullRouter(h *Handlers, live http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	r.Get("/", h.HandleIndex)

	r.Get("/api/stats", h.HandleStats)
	r.Get("/api/benchmarks", h.HandleBenchmarks)
	r.Get("/api/pipeline", h.HandlePipeline)
	r.Get("/api/health", h.HandleHealth)
	r.Get("/api/changelog", h.HandleChangelog)
	r.Get("/api/*", h.HandleAPINotFound)

	for _, m := range h.layout.Mounts {
		r.Get(m.Prefix+"/*", h.HandleStatic)
	}

	if live != nil {
		r.Get("/ws", live.ServeHTTP)
	}

	return r
}

// NewMinimalRouter serves the three core API paths and the whole landing
// directory as plain files.
func NewMinimalRouter(h *Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/stats":
			h.HandleMinimalStats(w, r)
		case "/api/health":
			h.HandleMinimalHealth(w, r)
		case "/api/pipeline":
			h.HandlePipeline(w, r)
		default:
			h.HandleAPINotFound(w, r)
		}
	})
	mux.Handle("GET /", http.FileServer(afero.NewHttpFs(h.fs).Dir(h.layout.Dir)))

	return mux
}

// SelectKind decides which router to run. liveErr is the error from starting
// the live feed, nil when it started or was not wanted.
//
// auto prefers the full router but drops to minimal when the live feed was
// wanted and failed; full keeps the full router and runs without the feed.
func SelectKind(mode string, liveErr error) (Kind, error) {
	switch mode {
	case config.ModeMinimal:
		return KindMinimal, nil
	case config.ModeFull:
		return KindFull, nil
	case config.ModeAuto, "":
		if liveErr != nil {
			return KindMinimal, nil
		}
		return KindFull, nil
	}
	return "", fmt.Errorf("unknown server mode %q", mode)
}
