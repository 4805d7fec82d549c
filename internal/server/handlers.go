package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cortexos/landing/internal/catalog"
	"github.com/cortexos/landing/internal/changelog"
	"github.com/cortexos/landing/internal/landing"
	"github.com/cortexos/landing/internal/logging"
	"github.com/cortexos/landing/internal/stats"
	"github.com/cortexos/landing/internal/version"
	"github.com/spf13/afero"
)

// fallbackHTML is served with a 404 when the landing document is missing.
const fallbackHTML = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>CortexOS</title></head>
<body><h1>CortexOS</h1><p>Landing page not found</p></body>
</html>
`

// Handlers holds everything the route handlers read. All of it is either
// immutable or guarded by the Tracker's lock.
type Handlers struct {
	fs          afero.Fs
	tracker     *stats.Tracker
	conventions stats.Conventions
	catalog     *catalog.Catalog
	layout      landing.Layout
	projectRoot string
	changelog   string
	now         func() time.Time
	logger      logging.Logger
}

// Dependencies are the inputs to NewHandlers. Zero values fall back to the
// defaults: the embedded catalog, the default conventions and time.Now.
type Dependencies struct {
	Fs          afero.Fs
	Tracker     *stats.Tracker
	Conventions *stats.Conventions
	Catalog     *catalog.Catalog
	Layout      landing.Layout
	ProjectRoot string
	Changelog   string
	Now         func() time.Time
	Logger      logging.Logger
}

// NewHandlers builds the handler set.
func NewHandlers(deps Dependencies) *Handlers {
	h := &Handlers{
		fs:          deps.Fs,
		tracker:     deps.Tracker,
		catalog:     deps.Catalog,
		layout:      deps.Layout,
		projectRoot: deps.ProjectRoot,
		changelog:   deps.Changelog,
		now:         deps.Now,
		logger:      deps.Logger,
	}
	if h.fs == nil {
		h.fs = afero.NewOsFs()
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.logger == nil {
		h.logger = logging.Discard()
	}
	h.logger = h.logger.WithComponent("handlers")
	if deps.Conventions != nil {
		h.conventions = *deps.Conventions
	} else {
		h.conventions = stats.DefaultConventions()
	}
	if h.tracker == nil {
		h.tracker = stats.NewTracker(h.fs, stats.WithConventions(h.conventions), stats.WithClock(h.now), stats.WithLogger(h.logger))
	}
	if h.catalog == nil {
		h.catalog = catalog.Default()
	}
	return h
}

type healthResponse struct {
	Status    string `json:"status"`
	Server    string `json:"server,omitempty"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON always answers 200. Encoding cannot fail for the types served
// here, so an error only means the client went away.
func (h *Handlers) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Debug(r.Context(), "response write failed", "path", r.URL.Path, "reason", err.Error())
	}
}

// HandleIndex serves the landing document, or the fallback page with a 404.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	data, err := afero.ReadFile(h.fs, h.layout.Index)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		h.logger.Debug(r.Context(), "landing document unavailable", "path", h.layout.Index, "reason", err.Error())
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(fallbackHTML))
		return
	}
	_, _ = w.Write(data)
}

// HandleStats refreshes the shared snapshot and returns it.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, h.tracker.Refresh(r.Context(), h.projectRoot))
}

func (h *Handlers) HandleBenchmarks(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, h.catalog.Benchmarks())
}

func (h *Handlers) HandlePipeline(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, h.catalog.PipelineStages())
}

// HandleHealth reports the published project version. It does not refresh.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, healthResponse{
		Status:    "healthy",
		Version:   h.tracker.Current().Version,
		Timestamp: stats.FormatTimestamp(h.now()),
	})
}

// HandleChangelog re-reads the changelog on every request.
func (h *Handlers) HandleChangelog(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, changelog.Read(h.fs, h.changelog))
}

// HandleAPINotFound answers unknown /api/ paths with 200 and an error body.
func (h *Handlers) HandleAPINotFound(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, errorResponse{Error: "not found"})
}

// HandleStatic serves a regular file from the mount covering the path.
func (h *Handlers) HandleStatic(w http.ResponseWriter, r *http.Request) {
	name, ok := h.layout.Resolve(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	info, err := h.fs.Stat(name)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	f, err := h.fs.Open(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// HandleMinimalStats builds and refreshes a throwaway snapshot, leaving the
// shared one alone.
func (h *Handlers) HandleMinimalStats(w http.ResponseWriter, r *http.Request) {
	fresh := stats.NewTracker(h.fs, stats.WithConventions(h.conventions), stats.WithClock(h.now), stats.WithLogger(h.logger))
	h.writeJSON(w, r, fresh.Refresh(r.Context(), h.projectRoot))
}

// HandleMinimalHealth names the fallback server and reports the binary
// version.
func (h *Handlers) HandleMinimalHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, healthResponse{
		Status:    "healthy",
		Server:    string(KindMinimal),
		Version:   version.GetVersion(),
		Timestamp: stats.FormatTimestamp(h.now()),
	})
}

// Tracker returns the shared tracker.
func (h *Handlers) Tracker() *stats.Tracker {
	return h.tracker
}
