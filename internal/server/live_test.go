package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/cortexos/landing/internal/stats"
	ws "github.com/cortexos/landing/internal/websocket"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newProject writes a minimal project on the real file system.
func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "test", "unit"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "plugins", "builtin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte(`{"version":"1.0.0"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "test", "a.test.ts"), []byte("a"), 0o644))
	return root
}

func newTestLiveFeed(t *testing.T, root string) (*LiveFeed, *stats.Tracker) {
	t.Helper()
	tracker := stats.NewTracker(afero.NewOsFs())
	tracker.Refresh(context.Background(), root)

	live, err := NewLiveFeed(LiveFeedConfig{
		Tracker:     tracker,
		Conventions: stats.DefaultConventions(),
		ProjectRoot: root,
		Changelog:   filepath.Join(root, "CHANGELOG.md"),
		Debounce:    20 * time.Millisecond,
	})
	require.NoError(t, err)
	return live, tracker
}

func readStatsUpdate(t *testing.T, conn *websocket.Conn) ws.StatsUpdate {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg ws.StatsUpdate
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestLiveFeedWatchesProjectInputs(t *testing.T) {
	root := newProject(t)
	live, _ := newTestLiveFeed(t, root)
	t.Cleanup(func() { _ = live.Shutdown(context.Background()) })

	assert.ElementsMatch(t, []string{
		root,
		filepath.Join(root, "src", "plugins", "builtin"),
		filepath.Join(root, "test"),
		filepath.Join(root, "test", "unit"),
	}, live.WatchList())
}

func TestLiveFeedRelevance(t *testing.T) {
	root := newProject(t)
	live, _ := newTestLiveFeed(t, root)
	t.Cleanup(func() { _ = live.Shutdown(context.Background()) })

	assert.True(t, live.relevant(filepath.Join(root, "package.json")))
	assert.True(t, live.relevant(filepath.Join(root, "CHANGELOG.md")))
	assert.True(t, live.relevant(filepath.Join(root, "test", "unit", "b.test.ts")))
	assert.True(t, live.relevant(filepath.Join(root, "src", "plugins", "builtin", "x-plugin.ts")))
	assert.False(t, live.relevant(filepath.Join(root, "README.md")))
	assert.False(t, live.relevant(filepath.Join(root, "testing", "x.test.ts")))
}

func TestLiveFeedPushesUpdates(t *testing.T) {
	root := newProject(t)
	live, _ := newTestLiveFeed(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, live.Start(ctx))
	t.Cleanup(func() { _ = live.Shutdown(context.Background()) })

	srv := httptest.NewServer(live.Handler())
	defer srv.Close()

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer dialCancel()
	conn, _, err := websocket.Dial(dialCtx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	greeting := readStatsUpdate(t, conn)
	assert.Equal(t, ws.MessageTypeStatsUpdate, greeting.Type)
	assert.Equal(t, "1.0.0", greeting.Stats.Version)
	assert.Equal(t, 1, greeting.Stats.TestFiles)

	require.Eventually(t, func() bool { return live.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte(`{"version":"1.1.0"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "test", "unit", "b.test.ts"), []byte("b"), 0o644))

	// Two writes may arrive in one batch or two; wait for the final state.
	deadline := time.Now().Add(10 * time.Second)
	for {
		msg := readStatsUpdate(t, conn)
		if msg.Stats.Version == "1.1.0" && msg.Stats.TestFiles == 2 {
			assert.NotEmpty(t, msg.Timestamp)
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("no update with the new manifest and test file, last %+v", msg.Stats)
		}
	}
}

func TestLiveFeedStopsWithContext(t *testing.T) {
	root := newProject(t)
	live, _ := newTestLiveFeed(t, root)
	t.Cleanup(func() { _ = live.Shutdown(context.Background()) })

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, live.Start(ctx))

	srv := httptest.NewServer(live.Handler())
	defer srv.Close()

	conn, _, err := websocket.Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.CloseNow()
	readStatsUpdate(t, conn)

	cancel()

	readCtx, readCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer readCancel()
	_, _, err = conn.Read(readCtx)
	assert.Error(t, err)
}
