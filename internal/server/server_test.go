package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/cortexos/landing/internal/config"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, overrides map[string]any) *config.Config {
	t.Helper()
	v := viper.New()
	v.Set("server.host", "127.0.0.1")
	v.Set("server.port", 0)
	v.Set("server.shutdown_timeout", "2s")
	v.Set("live.debounce", "20ms")
	for key, value := range overrides {
		v.Set(key, value)
	}
	cfg, err := config.LoadFrom(v)
	require.NoError(t, err)
	return cfg
}

func TestNewSelectsRouter(t *testing.T) {
	root := newProject(t)
	landingDir := filepath.Join(root, "landing")

	testCases := []struct {
		name string
		mode string
		live bool
		kind Kind
	}{
		{"auto with live feed", config.ModeAuto, true, KindFull},
		{"auto without live feed", config.ModeAuto, false, KindFull},
		{"full", config.ModeFull, true, KindFull},
		{"minimal ignores live feed", config.ModeMinimal, true, KindMinimal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(t, map[string]any{
				"server.mode":       tc.mode,
				"live.enabled":      tc.live,
				"paths.landing_dir": landingDir,
			})

			srv, err := New(cfg, nil, nil)
			require.NoError(t, err)
			t.Cleanup(func() { _ = srv.Close() })

			assert.Equal(t, tc.kind, srv.Kind())
			assert.Equal(t, tc.live && tc.kind == KindFull, srv.Live())
		})
	}
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(nil, nil, nil)
	assert.Error(t, err)
}

func TestServerStartAndShutdown(t *testing.T) {
	root := newProject(t)
	landingDir := filepath.Join(root, "landing")
	require.NoError(t, os.MkdirAll(landingDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(landingDir, "index.html"), []byte(indexHTML), 0o644))

	cfg := testConfig(t, map[string]any{"paths.landing_dir": landingDir})
	assert.Equal(t, root, filepath.Clean(cfg.Paths.ProjectRoot))

	srv, err := New(cfg, afero.NewOsFs(), nil)
	require.NoError(t, err)
	require.NoError(t, srv.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	base := "http://" + srv.Addr()

	// Start refreshes once before serving.
	require.Eventually(t, func() bool {
		return srv.Tracker().Current().Version == "1.0.0"
	}, 5*time.Second, 10*time.Millisecond)

	resp, err := http.Get(base + "/api/health")
	require.NoError(t, err)
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "1.0.0", health["version"])

	resp, err = http.Get(base + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, indexHTML, string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServerBindFailure(t *testing.T) {
	first, err := New(testConfig(t, map[string]any{"live.enabled": false}), afero.NewMemMapFs(), nil)
	require.NoError(t, err)
	require.NoError(t, first.Listen())
	t.Cleanup(func() { _ = first.Shutdown(context.Background()) })

	_, portStr, err := net.SplitHostPort(first.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	second, err := New(testConfig(t, map[string]any{"live.enabled": false, "server.port": port}), afero.NewMemMapFs(), nil)
	require.NoError(t, err)
	assert.Error(t, second.Listen())
}
