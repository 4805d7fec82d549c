// Package config provides configuration management for the landing server
// using Viper for loading from files, environment variables, and command-line
// flags.
//
// HOST and PORT are read unprefixed so the server drops into any platform that
// injects them. Every other key can be overridden through a LANDING_ prefixed
// variable, e.g. LANDING_PATHS_PROJECT_ROOT or LANDING_LIVE_ENABLED.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cortexos/landing/internal/logging"
	"github.com/cortexos/landing/internal/stats"
	"github.com/spf13/viper"
)

// Router modes.
const (
	ModeAuto    = "auto"
	ModeFull    = "full"
	ModeMinimal = "minimal"
)

// EnvPrefix prefixes every environment override except HOST and PORT.
const EnvPrefix = "LANDING"

type Config struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Paths  PathsConfig  `mapstructure:"paths" yaml:"paths"`
	Stats  StatsConfig  `mapstructure:"stats" yaml:"stats"`
	Live   LiveConfig   `mapstructure:"live" yaml:"live"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	Mode            string        `mapstructure:"mode" yaml:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// PathsConfig locates the landing site and the project it describes.
type PathsConfig struct {
	LandingDir  string `mapstructure:"landing_dir" yaml:"landing_dir"`
	ProjectRoot string `mapstructure:"project_root" yaml:"project_root"`
	Changelog   string `mapstructure:"changelog" yaml:"changelog"`
}

// StatsConfig holds the file conventions a stats refresh reads.
type StatsConfig struct {
	Manifest      string `mapstructure:"manifest" yaml:"manifest"`
	TestDir       string `mapstructure:"test_dir" yaml:"test_dir"`
	TestPattern   string `mapstructure:"test_pattern" yaml:"test_pattern"`
	PluginDir     string `mapstructure:"plugin_dir" yaml:"plugin_dir"`
	PluginPattern string `mapstructure:"plugin_pattern" yaml:"plugin_pattern"`
}

// Conventions converts the stats settings for stats.WithConventions.
func (s StatsConfig) Conventions() stats.Conventions {
	return stats.Conventions{
		Manifest:      s.Manifest,
		TestDir:       s.TestDir,
		TestPattern:   s.TestPattern,
		PluginDir:     s.PluginDir,
		PluginPattern: s.PluginPattern,
	}
}

type LiveConfig struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SetDefaults registers every key with its default and binds the environment
// variables. Keys must be known to viper for AutomaticEnv to reach them
// during Unmarshal.
func SetDefaults(v *viper.Viper) {
	conv := stats.DefaultConventions()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", ModeAuto)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("paths.landing_dir", ".")
	v.SetDefault("paths.project_root", "")
	v.SetDefault("paths.changelog", "")

	v.SetDefault("stats.manifest", conv.Manifest)
	v.SetDefault("stats.test_dir", conv.TestDir)
	v.SetDefault("stats.test_pattern", conv.TestPattern)
	v.SetDefault("stats.plugin_dir", conv.PluginDir)
	v.SetDefault("stats.plugin_pattern", conv.PluginPattern)

	v.SetDefault("live.enabled", true)
	v.SetDefault("live.debounce", 300*time.Millisecond)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatAuto)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.host", EnvPrefix+"_SERVER_HOST", "HOST")
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")
}

// Load reads the configuration from the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration from v, fills derived paths and validates
// the result.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	// The project root defaults to the landing directory's parent.
	if config.Paths.ProjectRoot == "" {
		config.Paths.ProjectRoot = filepath.Join(config.Paths.LandingDir, "..")
	}
	if config.Paths.Changelog == "" {
		config.Paths.Changelog = filepath.Join(config.Paths.ProjectRoot, "CHANGELOG.md")
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
