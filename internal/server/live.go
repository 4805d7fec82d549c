package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cortexos/landing/internal/logging"
	"github.com/cortexos/landing/internal/stats"
	"github.com/cortexos/landing/internal/watcher"
	"github.com/cortexos/landing/internal/websocket"
)

// LiveFeed refreshes the snapshot when project inputs change on disk and
// pushes it to websocket clients.
type LiveFeed struct {
	watcher *watcher.FileWatcher
	hub     *websocket.Hub
	tracker *stats.Tracker
	root    string
	now     func() time.Time
	logger  logging.Logger

	manifest  string
	testDir   string
	pluginDir string
	changelog string
}

// LiveFeedConfig holds the inputs of NewLiveFeed.
type LiveFeedConfig struct {
	Tracker     *stats.Tracker
	Conventions stats.Conventions
	ProjectRoot string
	Changelog   string
	Debounce    time.Duration
	Now         func() time.Time
	Logger      logging.Logger
}

// NewLiveFeed creates the watcher and the hub. It fails only when the OS
// refuses a file watcher; inputs that do not exist yet are skipped.
func NewLiveFeed(cfg LiveFeedConfig) (*LiveFeed, error) {
	if cfg.Tracker == nil {
		return nil, fmt.Errorf("live feed needs a tracker")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	logger := cfg.Logger.WithComponent("live")

	fw, err := watcher.NewFileWatcher(cfg.Debounce, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("start live feed: %w", err)
	}

	root := filepath.Clean(cfg.ProjectRoot)
	l := &LiveFeed{
		watcher:   fw,
		tracker:   cfg.Tracker,
		root:      root,
		now:       cfg.Now,
		logger:    logger,
		manifest:  filepath.Join(root, cfg.Conventions.Manifest),
		testDir:   filepath.Join(root, cfg.Conventions.TestDir),
		pluginDir: filepath.Join(root, cfg.Conventions.PluginDir),
		changelog: filepath.Clean(cfg.Changelog),
	}
	l.hub = websocket.NewHub(
		websocket.WithLogger(cfg.Logger),
		websocket.WithGreeting(func() (any, error) {
			return websocket.NewStatsUpdate(l.tracker.Current(), l.now()), nil
		}),
	)

	fw.AddFilter(watcher.NoGitFilter)
	fw.AddFilter(watcher.NoNodeModulesFilter)
	fw.AddFilter(watcher.NoEditorTempFilter)
	fw.AddFilter(l.relevant)
	fw.AddHandler(l.onChange)

	l.watchInputs()
	return l, nil
}

func (l *LiveFeed) watchInputs() {
	ctx := context.Background()
	flat := []string{l.root, filepath.Dir(l.manifest), l.pluginDir, filepath.Dir(l.changelog)}
	seen := make(map[string]bool)

	for _, dir := range flat {
		if seen[dir] || !isDir(dir) {
			continue
		}
		seen[dir] = true
		if err := l.watcher.AddPath(dir); err != nil {
			l.logger.Debug(ctx, "not watching", "path", dir, "reason", err.Error())
		}
	}

	if isDir(l.testDir) {
		if err := l.watcher.AddRecursive(l.testDir); err != nil {
			l.logger.Debug(ctx, "not watching", "path", l.testDir, "reason", err.Error())
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// relevant keeps changes that can alter the snapshot or the changelog.
func (l *LiveFeed) relevant(path string) bool {
	path = filepath.Clean(path)
	return path == l.manifest ||
		path == l.changelog ||
		within(path, l.testDir) ||
		within(path, l.pluginDir)
}

func within(path, dir string) bool {
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}

func (l *LiveFeed) onChange(ctx context.Context, events []watcher.ChangeEvent) error {
	snapshot := l.tracker.Refresh(ctx, l.root)
	l.logger.Debug(ctx, "project changed", "events", len(events), "test_files", snapshot.TestFiles, "version", snapshot.Version)
	return l.hub.Broadcast(websocket.NewStatsUpdate(snapshot, l.now()))
}

// Start runs the watcher until ctx is done, then closes every client.
func (l *LiveFeed) Start(ctx context.Context) error {
	if err := l.watcher.Start(ctx); err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		_ = l.hub.Shutdown(context.Background())
	}()
	return nil
}

// Handler returns the websocket endpoint.
func (l *LiveFeed) Handler() http.Handler {
	return l.hub
}

// Clients returns the number of connected websocket clients.
func (l *LiveFeed) Clients() int {
	return l.hub.ClientCount()
}

// WatchList returns the watched directories.
func (l *LiveFeed) WatchList() []string {
	return l.watcher.WatchList()
}

// Shutdown closes the hub and the watcher.
func (l *LiveFeed) Shutdown(ctx context.Context) error {
	hubErr := l.hub.Shutdown(ctx)
	if err := l.watcher.Stop(); err != nil {
		return fmt.Errorf("stop watcher: %w", err)
	}
	return hubErr
}
