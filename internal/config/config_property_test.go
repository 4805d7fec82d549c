//go:build property
// +build property

package config

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func validBase() Config {
	return Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8000, Mode: ModeAuto, ShutdownTimeout: time.Second},
		Paths:  PathsConfig{LandingDir: ".", ProjectRoot: "..", Changelog: "../CHANGELOG.md"},
		Stats: StatsConfig{
			Manifest:      "package.json",
			TestDir:       "test",
			TestPattern:   "*.test.ts",
			PluginDir:     "src/plugins/builtin",
			PluginPattern: "*-plugin.ts",
		},
		Live: LiveConfig{Enabled: true, Debounce: 300 * time.Millisecond},
		Log:  LogConfig{Level: "info", Format: "auto"},
	}
}

// TestConfigurationProperties checks the port and mode validation rules.
func TestConfigurationProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("port range decides validity", prop.ForAll(
		func(port int) bool {
			cfg := validBase()
			cfg.Server.Port = port
			err := validateConfig(&cfg)
			inRange := port >= 0 && port <= 65535
			return inRange == (err == nil)
		},
		gen.IntRange(-100000, 100000),
	))

	properties.Property("only known modes validate", prop.ForAll(
		func(mode string) bool {
			cfg := validBase()
			cfg.Server.Mode = mode
			err := validateConfig(&cfg)
			known := mode == ModeAuto || mode == ModeFull || mode == ModeMinimal
			return known == (err == nil)
		},
		gen.OneGenOf(gen.OneConstOf(ModeAuto, ModeFull, ModeMinimal), gen.AlphaString()),
	))

	properties.Property("non-negative debounce validates", prop.ForAll(
		func(ms int64) bool {
			cfg := validBase()
			cfg.Live.Debounce = time.Duration(ms) * time.Millisecond
			return (validateConfig(&cfg) == nil) == (ms >= 0)
		},
		gen.Int64Range(-5000, 5000),
	))

	properties.TestingRun(t)
}
