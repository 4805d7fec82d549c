// Package cmd provides the command-line interface for the CortexOS landing
// server.
//
// Configuration System:
//
//	Settings are resolved with clear precedence:
//	1. Command-line flags (--port, --landing-dir, etc.) - highest priority
//	2. Environment variables: HOST and PORT, then LANDING_<SECTION>_<OPTION>
//	3. Configuration file (--config, LANDING_CONFIG_FILE, or .landing.yml)
//	4. Built-in defaults - lowest priority
//
// Environment Variables:
//
//	LANDING_CONFIG_FILE: Path to a custom configuration file
//	HOST, PORT: Listen address, as injected by most hosting platforms
//	LANDING_SERVER_MODE: Router selection (auto, full, minimal)
//	LANDING_PATHS_PROJECT_ROOT: Project whose statistics are served
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/cortexos/landing/internal/config"
	lerrors "github.com/cortexos/landing/internal/errors"
	"github.com/cortexos/landing/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// configReadErr keeps a config file that exists but cannot be parsed, so
	// commands that need configuration fail with suggestions instead of
	// silently running on defaults.
	configReadErr error
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "landing",
	Short: "Serve the CortexOS landing page and its live project statistics",
	Long: `landing serves the CortexOS marketing page together with a small JSON API
describing the project: statistics read from the repository, the published
benchmark and pipeline tables, and the latest changelog entries.

Quick Start:
  landing serve                   Start the server on 0.0.0.0:8000
  landing stats                   Print the statistics the API would serve
  landing doctor                  Check the landing page and project inputs

Command Aliases:
  serve (s), stats (st), benchmarks (bench), changelog (log)`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .landing.yml, can also use LANDING_CONFIG_FILE env var)")
	flags.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", logging.FormatAuto, "log format (text, json, auto)")
	flags.String("landing-dir", ".", "directory holding index.html and the static assets")
	flags.String("project-root", "", "project whose statistics are served (default is the landing directory's parent)")

	SetViperBindings(rootCmd, map[string]string{
		"log-level":    "log.level",
		"log-format":   "log.format",
		"landing-dir":  "paths.landing_dir",
		"project-root": "paths.project_root",
	})
	AddFlagValidation(rootCmd, "log-format", func(v string) error {
		return ValidateChoice(v, []string{logging.FormatText, logging.FormatJSON, logging.FormatAuto})
	})
}

// initConfig selects the configuration file.
//
// Loading priority (highest to lowest):
//  1. --config flag
//  2. LANDING_CONFIG_FILE environment variable
//  3. .landing.yml in the current directory
//
// Environment overrides are bound by config.Load.
func initConfig() {
	configReadErr = nil

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("LANDING_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".landing")
	}

	err := viper.ReadInConfig()
	if err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		return
	}

	// A missing default file is normal; anything else is worth reporting.
	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		configReadErr = err
	}
}

// loadConfig resolves the configuration and turns failures into errors that
// carry suggestions.
func loadConfig() (*config.Config, error) {
	if configReadErr != nil {
		return nil, lerrors.NewEnhancedError(
			"Failed to read configuration file",
			configReadErr,
			lerrors.ConfigurationError(configReadErr.Error(), viper.ConfigFileUsed(), nil),
		)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, lerrors.NewEnhancedError(
			"Configuration is invalid",
			err,
			lerrors.ConfigurationError(err.Error(), viper.ConfigFileUsed(), &lerrors.SuggestionContext{
				ConfigPath:  viper.ConfigFileUsed(),
				LandingDir:  viper.GetString("paths.landing_dir"),
				ProjectRoot: viper.GetString("paths.project_root"),
			}),
		)
	}
	return cfg, nil
}

// newLogger builds the process logger from the log section.
func newLogger(cfg *config.Config) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.Log.Format,
		Output:    os.Stderr,
		Component: "landing",
	}), nil
}

func suggestionContext(cfg *config.Config) *lerrors.SuggestionContext {
	return &lerrors.SuggestionContext{
		ConfigPath:  viper.ConfigFileUsed(),
		LandingDir:  cfg.Paths.LandingDir,
		ProjectRoot: cfg.Paths.ProjectRoot,
	}
}
