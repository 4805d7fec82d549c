// Package errors turns startup failures into messages that tell the operator
// what to try next.
package errors

import (
	"fmt"
	"strings"
)

// ErrorSuggestion represents a suggestion for fixing an error
type ErrorSuggestion struct {
	Title       string
	Description string
	Command     string
	Example     string
}

// SuggestionContext provides context for generating suggestions
type SuggestionContext struct {
	ConfigPath  string
	LandingDir  string
	ProjectRoot string
}

// ServerStartError generates suggestions for server startup failures
func ServerStartError(err error, port int, ctx *SuggestionContext) []ErrorSuggestion {
	suggestions := []ErrorSuggestion{}

	errStr := err.Error()

	if strings.Contains(errStr, "address already in use") || strings.Contains(errStr, "bind") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Port already in use",
			Description: fmt.Sprintf("Port %d is already being used by another process", port),
			Command:     fmt.Sprintf("lsof -i :%d", port),
		})

		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Use a different port",
			Description: "Start the server on a different port",
			Command:     fmt.Sprintf("PORT=%d landing serve", port+1),
		})
	}

	if strings.Contains(errStr, "permission denied") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Permission denied",
			Description: "You don't have permission to bind to this port",
		})

		if port < 1024 {
			suggestions = append(suggestions, ErrorSuggestion{
				Title:       "Use unprivileged port",
				Description: "Ports below 1024 require root privileges",
				Command:     "landing serve --port 8000",
			})
		}
	}

	if strings.Contains(errStr, "no such host") || strings.Contains(errStr, "cannot assign requested address") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Check the host",
			Description: "The host does not resolve to an address of this machine",
			Command:     "landing serve --host 0.0.0.0",
		})
	}

	return suggestions
}

// ConfigurationError generates suggestions for configuration issues
func ConfigurationError(configError string, configPath string, ctx *SuggestionContext) []ErrorSuggestion {
	suggestions := []ErrorSuggestion{}

	if configPath != "" {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Check configuration file",
			Description: "Verify your .landing.yml file exists and has valid syntax",
			Command:     "cat " + configPath,
		})
	}

	suggestions = append(suggestions, ErrorSuggestion{
		Title:       "Run the doctor",
		Description: "The doctor command reports which inputs the server can read",
		Command:     "landing doctor",
	})

	if strings.Contains(configError, "yaml") || strings.Contains(configError, "unmarshal") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Fix YAML syntax",
			Description: "There's a syntax error in your YAML configuration",
			Example:     "Use proper indentation and avoid tabs",
		})
	}

	if strings.Contains(configError, "server.port") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Fix the port",
			Description: "PORT must be a number between 0 and 65535",
			Example:     "PORT=8000 landing serve",
		})
	}

	if strings.Contains(configError, "paths.") {
		dir := "."
		if ctx != nil && ctx.LandingDir != "" {
			dir = ctx.LandingDir
		}
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Check directory paths",
			Description: "Verify all paths in your configuration exist",
			Command:     "ls -la " + dir,
		})
	}

	return suggestions
}

// LandingPageMissing generates suggestions when index.html cannot be found.
func LandingPageMissing(ctx *SuggestionContext) []ErrorSuggestion {
	dir := "."
	if ctx != nil && ctx.LandingDir != "" {
		dir = ctx.LandingDir
	}
	return []ErrorSuggestion{
		{
			Title:       "Point the server at the landing directory",
			Description: "The directory must contain index.html",
			Command:     "landing serve --landing-dir " + dir,
		},
		{
			Title:       "Inspect the landing page",
			Description: "List the assets index.html references and which are missing",
			Command:     "landing doctor --landing-dir " + dir,
		},
	}
}

// FormatSuggestions formats suggestions into a user-friendly string
func FormatSuggestions(title string, suggestions []ErrorSuggestion) string {
	if len(suggestions) == 0 {
		return title
	}

	var output strings.Builder
	output.WriteString(title + "\n\n")
	output.WriteString("Suggestions:\n")

	for i, suggestion := range suggestions {
		output.WriteString(fmt.Sprintf("  %d. %s\n", i+1, suggestion.Title))
		if suggestion.Description != "" {
			output.WriteString(fmt.Sprintf("     %s\n", suggestion.Description))
		}
		if suggestion.Command != "" {
			output.WriteString(fmt.Sprintf("     Run: %s\n", suggestion.Command))
		}
		if suggestion.Example != "" {
			output.WriteString(fmt.Sprintf("     Example: %s\n", suggestion.Example))
		}
		output.WriteString("\n")
	}

	return output.String()
}

// EnhancedError wraps an error with suggestions
type EnhancedError struct {
	OriginalError error
	Title         string
	Suggestions   []ErrorSuggestion
}

// Error implements the error interface
func (e *EnhancedError) Error() string {
	msg := FormatSuggestions(e.Title, e.Suggestions)
	if e.OriginalError != nil && len(e.Suggestions) == 0 {
		msg += ": " + e.OriginalError.Error()
	}
	return msg
}

// Unwrap returns the original error
func (e *EnhancedError) Unwrap() error {
	return e.OriginalError
}

// NewEnhancedError creates a new enhanced error with suggestions
func NewEnhancedError(title string, originalError error, suggestions []ErrorSuggestion) *EnhancedError {
	return &EnhancedError{
		OriginalError: originalError,
		Title:         title,
		Suggestions:   suggestions,
	}
}
