package stats

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const root = "/project"

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
}

// stepClock returns a clock that advances one second per call.
func stepClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func TestRefreshWithoutRootOnlyStampsTime(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "package.json", `{"version":"9.9.9"}`)

	now := time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)
	tracker := NewTracker(fsys, WithClock(func() time.Time { return now }))

	snap := tracker.Refresh(context.Background(), "")

	want := DefaultSnapshot()
	want.LastUpdated = "2026-10-19T08:30:00.000000Z"
	assert.Equal(t, want, snap)
}

func TestRefreshReadsManifestVersion(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, filepath.Join(root, "package.json"), `{"name":"cortexos","version":"2.3.4"}`)

	snap := NewTracker(fsys).Refresh(context.Background(), root)

	assert.Equal(t, "2.3.4", snap.Version)
}

func TestRefreshKeepsVersionOnBadManifest(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
	}{
		{name: "malformed json", manifest: `{"version": `},
		{name: "missing key", manifest: `{"name":"cortexos"}`},
		{name: "numeric version", manifest: `{"version": 3}`},
		{name: "array document", manifest: `["1.0.0"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			writeFile(t, fsys, filepath.Join(root, "package.json"), tt.manifest)

			snap := NewTracker(fsys).Refresh(context.Background(), root)

			assert.Equal(t, DefaultSnapshot().Version, snap.Version)
		})
	}
}

func TestRefreshWithoutManifestKeepsPriorVersion(t *testing.T) {
	fsys := afero.NewMemMapFs()
	manifest := filepath.Join(root, "package.json")
	writeFile(t, fsys, manifest, `{"version":"1.2.0"}`)

	tracker := NewTracker(fsys, WithClock(stepClock(time.Now())))
	first := tracker.Refresh(context.Background(), root)
	require.Equal(t, "1.2.0", first.Version)

	require.NoError(t, fsys.Remove(manifest))
	second := tracker.Refresh(context.Background(), root)

	assert.Equal(t, "1.2.0", second.Version)
	assert.GreaterOrEqual(t, second.LastUpdated, first.LastUpdated)
}

func TestRefreshCountsTestFilesRecursively(t *testing.T) {
	fsys := afero.NewMemMapFs()
	matching := []string{
		"test/a.test.ts",
		"test/b.test.ts",
		"test/unit/c.test.ts",
		"test/unit/d.test.ts",
		"test/unit/deep/e.test.ts",
		"test/integration/f.test.ts",
		"test/integration/g.test.ts",
	}
	for _, p := range matching {
		writeFile(t, fsys, filepath.Join(root, p), "it('works')")
	}
	writeFile(t, fsys, filepath.Join(root, "test/helpers.ts"), "")
	writeFile(t, fsys, filepath.Join(root, "test/unit/fixture.test.json"), "{}")

	snap := NewTracker(fsys).Refresh(context.Background(), root)

	assert.Equal(t, 7, snap.TestFiles)
}

func TestRefreshCountsPluginsDirectlyInBuiltinDir(t *testing.T) {
	fsys := afero.NewMemMapFs()
	builtin := filepath.Join(root, "src", "plugins", "builtin")
	writeFile(t, fsys, filepath.Join(builtin, "git-plugin.ts"), "")
	writeFile(t, fsys, filepath.Join(builtin, "lint-plugin.ts"), "")
	writeFile(t, fsys, filepath.Join(builtin, "index.ts"), "")
	writeFile(t, fsys, filepath.Join(builtin, "nested", "deep-plugin.ts"), "")

	snap := NewTracker(fsys).Refresh(context.Background(), root)

	assert.Equal(t, 2, snap.BuiltinPlugins)
}

func TestRefreshLeavesCountsWhenDirectoriesMissing(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll(root, 0o755))

	snap := NewTracker(fsys).Refresh(context.Background(), root)

	defaults := DefaultSnapshot()
	assert.Equal(t, defaults.TestFiles, snap.TestFiles)
	assert.Equal(t, defaults.BuiltinPlugins, snap.BuiltinPlugins)
	assert.NotEmpty(t, snap.LastUpdated)
}

func TestRefreshNeverTouchesStaticFields(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, filepath.Join(root, "package.json"), `{"version":"3.0.0"}`)
	writeFile(t, fsys, filepath.Join(root, "test", "x.test.ts"), "")
	writeFile(t, fsys, filepath.Join(root, "src", "plugins", "builtin", "a-plugin.ts"), "")

	snap := NewTracker(fsys).Refresh(context.Background(), root)

	want := DefaultSnapshot()
	want.Version = "3.0.0"
	want.TestFiles = 1
	want.BuiltinPlugins = 1
	want.LastUpdated = snap.LastUpdated
	assert.Equal(t, want, snap)
}

func TestCustomConventions(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, filepath.Join(root, "spec", "a_test.go"), "")
	writeFile(t, fsys, filepath.Join(root, "spec", "b_test.go"), "")
	writeFile(t, fsys, filepath.Join(root, "plugins", "x.plugin.go"), "")

	conv := DefaultConventions()
	conv.TestDir = "spec"
	conv.TestPattern = "*_test.go"
	conv.PluginDir = "plugins"
	conv.PluginPattern = "*.plugin.go"

	snap := NewTracker(fsys, WithConventions(conv)).Refresh(context.Background(), root)

	assert.Equal(t, 2, snap.TestFiles)
	assert.Equal(t, 1, snap.BuiltinPlugins)
}

func TestLastUpdatedIsMonotonic(t *testing.T) {
	tracker := NewTracker(afero.NewMemMapFs(), WithClock(stepClock(time.Date(2026, 1, 1, 0, 0, 0, 999_000, time.UTC))))

	prev := tracker.Refresh(context.Background(), "").LastUpdated
	for i := 0; i < 20; i++ {
		next := tracker.Refresh(context.Background(), root).LastUpdated
		assert.GreaterOrEqual(t, next, prev)
		prev = next
	}
}

func TestCountFilesMissingDir(t *testing.T) {
	_, err := CountFiles(afero.NewMemMapFs(), "/nowhere", "*.ts", true)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestCountFilesBadPattern(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/dir", 0o755))

	_, err := CountFiles(fsys, "/dir", "[", false)
	assert.Error(t, err)
}

func TestCountFilesOnRegularFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/dir/file.test.ts", "")

	n, err := CountFiles(fsys, "/dir/file.test.ts", "*.test.ts", true)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConcurrentRefresh(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, filepath.Join(root, "package.json"), `{"version":"4.0.0"}`)
	tracker := NewTracker(fsys)

	done := make(chan Snapshot)
	for i := 0; i < 8; i++ {
		go func() { done <- tracker.Refresh(context.Background(), root) }()
	}
	for i := 0; i < 8; i++ {
		snap := <-done
		assert.Equal(t, "4.0.0", snap.Version, fmt.Sprintf("refresh %d", i))
	}
}
