package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/cortexos/landing/internal/logging"
	"github.com/spf13/afero"
)

// Conventions names the files a refresh reads, relative to the project root.
type Conventions struct {
	Manifest      string
	TestDir       string
	TestPattern   string
	PluginDir     string
	PluginPattern string
}

// DefaultConventions matches a TypeScript project layout: Jest-style
// *.test.ts files under test/ and *-plugin.ts files in src/plugins/builtin.
func DefaultConventions() Conventions {
	return Conventions{
		Manifest:      "package.json",
		TestDir:       "test",
		TestPattern:   "*.test.ts",
		PluginDir:     filepath.Join("src", "plugins", "builtin"),
		PluginPattern: "*-plugin.ts",
	}
}

// Tracker owns one Snapshot and refreshes it in place.
type Tracker struct {
	mu       sync.Mutex
	fs       afero.Fs
	conv     Conventions
	now      func() time.Time
	logger   logging.Logger
	snapshot Snapshot
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithConventions overrides the manifest and counting conventions.
func WithConventions(conv Conventions) Option {
	return func(t *Tracker) { t.conv = conv }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the logger used to report skipped inputs.
func WithLogger(logger logging.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// NewTracker returns a Tracker holding DefaultSnapshot.
func NewTracker(fsys afero.Fs, opts ...Option) *Tracker {
	t := &Tracker{
		fs:       fsys,
		conv:     DefaultConventions(),
		now:      time.Now,
		snapshot: DefaultSnapshot(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = logging.Discard()
	}
	return t
}

// Current returns a copy of the snapshot without refreshing it.
func (t *Tracker) Current() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot
}

// Refresh stamps LastUpdated and, when root is non-empty, re-reads the
// manifest version and the test and plugin counts from it. Each input is
// optional: a missing or unreadable one leaves its field untouched. Refresh
// never fails.
func (t *Tracker) Refresh(ctx context.Context, root string) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snapshot.LastUpdated = FormatTimestamp(t.now())
	if root == "" {
		return t.snapshot
	}

	manifest := filepath.Join(root, t.conv.Manifest)
	if v, err := ReadManifestVersion(t.fs, manifest); err == nil {
		t.snapshot.Version = v
	} else {
		t.logger.Debug(ctx, "manifest version skipped", "path", manifest, "reason", err.Error())
	}

	testDir := filepath.Join(root, t.conv.TestDir)
	if n, err := CountFiles(t.fs, testDir, t.conv.TestPattern, true); err == nil {
		t.snapshot.TestFiles = n
	} else {
		t.logger.Debug(ctx, "test file count skipped", "path", testDir, "reason", err.Error())
	}

	pluginDir := filepath.Join(root, t.conv.PluginDir)
	if n, err := CountFiles(t.fs, pluginDir, t.conv.PluginPattern, false); err == nil {
		t.snapshot.BuiltinPlugins = n
	} else {
		t.logger.Debug(ctx, "plugin count skipped", "path", pluginDir, "reason", err.Error())
	}

	return t.snapshot
}

// ReadManifestVersion returns the string "version" key of a JSON manifest.
func ReadManifestVersion(fsys afero.Fs, path string) (string, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return "", fmt.Errorf("read manifest: %w", err)
	}

	var manifest map[string]json.RawMessage
	if err := json.Unmarshal(data, &manifest); err != nil {
		return "", fmt.Errorf("parse manifest: %w", err)
	}

	raw, ok := manifest["version"]
	if !ok {
		return "", fmt.Errorf("manifest %s has no version", path)
	}

	var version string
	if err := json.Unmarshal(raw, &version); err != nil {
		return "", fmt.Errorf("manifest version is not a string: %w", err)
	}
	return version, nil
}
