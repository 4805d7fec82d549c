package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cortexos/landing/internal/logging"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	var errs []error

	if err := validateServerConfig(&config.Server); err != nil {
		errs = append(errs, fmt.Errorf("server config: %w", err))
	}
	if err := validatePathsConfig(&config.Paths); err != nil {
		errs = append(errs, fmt.Errorf("paths config: %w", err))
	}
	if err := validateStatsConfig(&config.Stats); err != nil {
		errs = append(errs, fmt.Errorf("stats config: %w", err))
	}
	if config.Live.Debounce < 0 {
		errs = append(errs, &ValidationError{
			Field:       "live.debounce",
			Value:       config.Live.Debounce,
			Message:     "debounce must not be negative",
			Suggestions: []string{"use a duration such as 300ms"},
		})
	}
	if err := validateLogConfig(&config.Log); err != nil {
		errs = append(errs, fmt.Errorf("log config: %w", err))
	}

	return errors.Join(errs...)
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Port 0 asks the OS for a free port, which tests rely on.
	if config.Port < 0 || config.Port > 65535 {
		return &ValidationError{
			Field:       "server.port",
			Value:       config.Port,
			Message:     fmt.Sprintf("port %d is not in valid range 0-65535", config.Port),
			Suggestions: []string{"set PORT to a value such as 8000"},
		}
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\", " "}
	for _, char := range dangerousChars {
		if strings.Contains(config.Host, char) {
			return &ValidationError{
				Field:   "server.host",
				Value:   config.Host,
				Message: fmt.Sprintf("host contains dangerous character: %q", char),
			}
		}
	}

	switch config.Mode {
	case ModeAuto, ModeFull, ModeMinimal:
	default:
		return &ValidationError{
			Field:       "server.mode",
			Value:       config.Mode,
			Message:     fmt.Sprintf("unknown mode %q", config.Mode),
			Suggestions: []string{"use one of auto, full, minimal"},
		}
	}

	if config.ShutdownTimeout < 0 {
		return &ValidationError{
			Field:   "server.shutdown_timeout",
			Value:   config.ShutdownTimeout,
			Message: "shutdown timeout must not be negative",
		}
	}

	return nil
}

func validatePathsConfig(config *PathsConfig) error {
	fields := map[string]string{
		"paths.landing_dir":  config.LandingDir,
		"paths.project_root": config.ProjectRoot,
		"paths.changelog":    config.Changelog,
	}
	for field, value := range fields {
		if value == "" {
			return &ValidationError{Field: field, Message: "path must not be empty"}
		}
		if strings.ContainsRune(value, 0) {
			return &ValidationError{Field: field, Value: value, Message: "path contains a NUL byte"}
		}
	}
	return nil
}

func validateStatsConfig(config *StatsConfig) error {
	patterns := map[string]string{
		"stats.test_pattern":   config.TestPattern,
		"stats.plugin_pattern": config.PluginPattern,
	}
	for field, pattern := range patterns {
		if pattern == "" {
			return &ValidationError{Field: field, Message: "pattern must not be empty"}
		}
		if _, err := filepath.Match(pattern, ""); err != nil {
			return &ValidationError{
				Field:       field,
				Value:       pattern,
				Message:     fmt.Sprintf("invalid glob: %v", err),
				Suggestions: []string{"patterns follow path/filepath.Match, e.g. *.test.ts"},
			}
		}
	}
	if config.Manifest == "" {
		return &ValidationError{Field: "stats.manifest", Message: "manifest name must not be empty"}
	}
	return nil
}

func validateLogConfig(config *LogConfig) error {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		return &ValidationError{
			Field:       "log.level",
			Value:       config.Level,
			Message:     err.Error(),
			Suggestions: []string{"use one of debug, info, warn, error"},
		}
	}
	switch config.Format {
	case logging.FormatAuto, logging.FormatText, logging.FormatJSON:
		return nil
	}
	return &ValidationError{
		Field:       "log.format",
		Value:       config.Format,
		Message:     fmt.Sprintf("unknown format %q", config.Format),
		Suggestions: []string{"use one of auto, text, json"},
	}
}
