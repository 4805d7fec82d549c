package cmd

import (
	"fmt"
	"io"
	"net"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/cortexos/landing/internal/changelog"
	"github.com/cortexos/landing/internal/config"
	lerrors "github.com/cortexos/landing/internal/errors"
	"github.com/cortexos/landing/internal/landing"
	"github.com/cortexos/landing/internal/stats"
	"github.com/cortexos/landing/internal/version"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the landing page and the project inputs the API reads",
	Long: `Diagnose the landing site and the project it describes.

The doctor command checks:

- Configuration loading
- The landing document and every asset it references under /styles, /js and /assets
- The project manifest, test files, builtin plugins and changelog
- Whether the configured listen address is free

Examples:
  landing doctor                    # Full diagnosis
  landing doctor --verbose          # Include informational checks
  landing doctor --format json      # Output as JSON for tooling`,
	RunE: runDoctor,
}

var (
	doctorVerbose bool
	doctorFormat  string
)

// Diagnostic statuses.
const (
	StatusOK      = "ok"
	StatusWarning = "warning"
	StatusError   = "error"
	StatusInfo    = "info"
)

// DiagnosticResult represents the result of a diagnostic check
type DiagnosticResult struct {
	Name       string         `json:"name" yaml:"name"`
	Category   string         `json:"category" yaml:"category"`
	Status     string         `json:"status" yaml:"status"`
	Message    string         `json:"message" yaml:"message"`
	Suggestion string         `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Details    map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
}

// DoctorReport represents the complete diagnostic report
type DoctorReport struct {
	Timestamp   time.Time          `json:"timestamp" yaml:"timestamp"`
	Environment map[string]string  `json:"environment" yaml:"environment"`
	Results     []DiagnosticResult `json:"results" yaml:"results"`
	Summary     ReportSummary      `json:"summary" yaml:"summary"`
}

// ReportSummary provides an overview of diagnostic results
type ReportSummary struct {
	Total    int `json:"total" yaml:"total"`
	OK       int `json:"ok" yaml:"ok"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Errors   int `json:"errors" yaml:"errors"`
	Info     int `json:"info" yaml:"info"`
}

// doctorEnv is what every check reads from.
type doctorEnv struct {
	fs  afero.Fs
	cfg *config.Config
}

type diagnosticCheck func(env doctorEnv) []DiagnosticResult

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().BoolVarP(&doctorVerbose, "verbose", "v", false, "Show informational checks")
	addOutputFlag(doctorCmd, &doctorFormat)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	report := diagnose(doctorEnv{fs: afero.NewOsFs(), cfg: cfg})

	out := cmd.OutOrStdout()
	handled, err := writeStructured(out, doctorFormat, report)
	if err != nil {
		return fmt.Errorf("failed to output report: %w", err)
	}
	if !handled {
		displayReport(out, report, doctorVerbose)
	}

	if report.Summary.Errors > 0 {
		return fmt.Errorf("doctor found %d error(s)", report.Summary.Errors)
	}
	return nil
}

// diagnose runs every check against env.
func diagnose(env doctorEnv) *DoctorReport {
	report := &DoctorReport{
		Timestamp:   time.Now().UTC(),
		Environment: gatherEnvironmentInfo(env.cfg),
		Results:     []DiagnosticResult{},
	}

	checks := []diagnosticCheck{
		checkConfiguration,
		checkLandingPage,
		checkManifest,
		checkTestFiles,
		checkPlugins,
		checkChangelog,
		checkListenAddress,
	}
	for _, check := range checks {
		report.Results = append(report.Results, check(env)...)
	}

	report.Summary = calculateSummary(report.Results)
	return report
}

func gatherEnvironmentInfo(cfg *config.Config) map[string]string {
	return map[string]string{
		"version":      version.GetShortVersion(),
		"go_version":   runtime.Version(),
		"platform":     runtime.GOOS + "/" + runtime.GOARCH,
		"landing_dir":  cfg.Paths.LandingDir,
		"project_root": cfg.Paths.ProjectRoot,
		"mode":         cfg.Server.Mode,
	}
}

func checkConfiguration(env doctorEnv) []DiagnosticResult {
	result := DiagnosticResult{Name: "Configuration", Category: "config", Status: StatusOK}
	if used := viper.ConfigFileUsed(); used != "" {
		result.Message = "Loaded " + used
	} else {
		result.Status = StatusInfo
		result.Message = "No configuration file, using defaults and environment"
	}
	return []DiagnosticResult{result}
}

func checkLandingPage(env doctorEnv) []DiagnosticResult {
	layout := landing.NewLayout(env.cfg.Paths.LandingDir)

	report, err := landing.Inspect(env.fs, layout)
	if err != nil {
		suggestions := lerrors.LandingPageMissing(suggestionContext(env.cfg))
		return []DiagnosticResult{{
			Name:       "Landing page",
			Category:   "landing",
			Status:     StatusError,
			Message:    err.Error(),
			Suggestion: suggestions[0].Command,
		}}
	}

	page := DiagnosticResult{
		Name:     "Landing page",
		Category: "landing",
		Status:   StatusOK,
		Message:  fmt.Sprintf("%s (%q)", layout.Index, report.Title),
	}

	assets := DiagnosticResult{Name: "Landing assets", Category: "landing", Status: StatusOK}
	missing := report.Missing()
	if len(missing) == 0 {
		assets.Message = fmt.Sprintf("All %d referenced assets present", len(report.Assets))
	} else {
		urls := make([]string, 0, len(missing))
		for _, m := range missing {
			urls = append(urls, m.URL)
		}
		assets.Status = StatusWarning
		assets.Message = fmt.Sprintf("%d of %d referenced assets missing", len(missing), len(report.Assets))
		assets.Details = map[string]any{"missing": urls}
		assets.Suggestion = "Add the files under " + layout.Dir + " or fix the references in index.html"
	}

	return []DiagnosticResult{page, assets}
}

func checkManifest(env doctorEnv) []DiagnosticResult {
	path := filepath.Join(env.cfg.Paths.ProjectRoot, env.cfg.Stats.Manifest)
	result := DiagnosticResult{Name: "Manifest", Category: "project", Status: StatusOK}

	v, err := stats.ReadManifestVersion(env.fs, path)
	if err != nil {
		result.Status = StatusWarning
		result.Message = err.Error()
		result.Suggestion = fmt.Sprintf("The API will report the baseline version %s", stats.DefaultSnapshot().Version)
	} else {
		result.Message = fmt.Sprintf("%s reports version %s", path, v)
	}
	return []DiagnosticResult{result}
}

func checkTestFiles(env doctorEnv) []DiagnosticResult {
	conv := env.cfg.Stats
	return []DiagnosticResult{countCheck(env, "Test files", filepath.Join(env.cfg.Paths.ProjectRoot, conv.TestDir), conv.TestPattern, true)}
}

func checkPlugins(env doctorEnv) []DiagnosticResult {
	conv := env.cfg.Stats
	return []DiagnosticResult{countCheck(env, "Builtin plugins", filepath.Join(env.cfg.Paths.ProjectRoot, conv.PluginDir), conv.PluginPattern, false)}
}

func countCheck(env doctorEnv, name, dir, pattern string, recursive bool) DiagnosticResult {
	result := DiagnosticResult{Name: name, Category: "project", Status: StatusOK}

	n, err := stats.CountFiles(env.fs, dir, pattern, recursive)
	switch {
	case err != nil:
		result.Status = StatusWarning
		result.Message = err.Error()
		result.Suggestion = "The API will report the baseline figure"
	case n == 0:
		result.Status = StatusWarning
		result.Message = fmt.Sprintf("No %s files in %s", pattern, dir)
	default:
		result.Message = fmt.Sprintf("%d %s files in %s", n, pattern, dir)
	}
	return result
}

func checkChangelog(env doctorEnv) []DiagnosticResult {
	path := env.cfg.Paths.Changelog
	result := DiagnosticResult{Name: "Changelog", Category: "project", Status: StatusOK}

	entries := changelog.Read(env.fs, path)
	if len(entries) == 0 {
		result.Status = StatusWarning
		result.Message = "No version sections in " + path
		result.Suggestion = "Add \"## <version>\" headings followed by \"- \" change lines"
	} else {
		result.Message = fmt.Sprintf("%d recent versions, newest %s", len(entries), entries[0].Version)
	}
	return []DiagnosticResult{result}
}

func checkListenAddress(env doctorEnv) []DiagnosticResult {
	addr := env.cfg.Server.Addr()
	result := DiagnosticResult{Name: "Listen address", Category: "server", Status: StatusOK}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		result.Status = StatusError
		result.Message = err.Error()
		if suggestions := lerrors.ServerStartError(err, env.cfg.Server.Port, suggestionContext(env.cfg)); len(suggestions) > 0 {
			result.Suggestion = suggestions[0].Title
			if suggestions[0].Command != "" {
				result.Suggestion += ": " + suggestions[0].Command
			}
		}
		return []DiagnosticResult{result}
	}
	_ = ln.Close()

	result.Message = addr + " is available"
	return []DiagnosticResult{result}
}

func calculateSummary(results []DiagnosticResult) ReportSummary {
	summary := ReportSummary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusOK:
			summary.OK++
		case StatusWarning:
			summary.Warnings++
		case StatusError:
			summary.Errors++
		case StatusInfo:
			summary.Info++
		}
	}
	return summary
}

func displayReport(w io.Writer, report *DoctorReport, verbose bool) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintln(w, bold("CortexOS landing doctor"))
	fmt.Fprintln(w)

	for _, r := range report.Results {
		if !verbose && r.Status == StatusInfo {
			continue
		}
		fmt.Fprintf(w, "%s %-16s %s\n", statusIcon(r.Status), r.Name, r.Message)
		if r.Suggestion != "" {
			fmt.Fprintf(w, "    -> %s\n", r.Suggestion)
		}
		if missing, ok := r.Details["missing"].([]string); ok {
			fmt.Fprintf(w, "    missing: %s\n", strings.Join(missing, ", "))
		}
	}

	s := report.Summary
	fmt.Fprintf(w, "\n%d checks: %d ok, %d warnings, %d errors, %d info\n", s.Total, s.OK, s.Warnings, s.Errors, s.Info)
}

func statusIcon(status string) string {
	switch status {
	case StatusOK:
		return color.GreenString("[ok]  ")
	case StatusWarning:
		return color.YellowString("[warn]")
	case StatusError:
		return color.RedString("[err] ")
	default:
		return color.HiBlackString("[info]")
	}
}
