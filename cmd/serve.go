package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/cortexos/landing/internal/config"
	lerrors "github.com/cortexos/landing/internal/errors"
	"github.com/cortexos/landing/internal/landing"
	"github.com/cortexos/landing/internal/server"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Serve the landing page and the project API",
	Long: `Serve the landing page, its static assets and the JSON API.

The full router adds a /ws endpoint that pushes fresh statistics whenever the
project manifest, tests, plugins or changelog change. In auto mode the server
falls back to the minimal router when the live feed cannot start.

Examples:
  landing serve                          # 0.0.0.0:8000, or HOST/PORT from the environment
  landing serve --port 3000              # Custom port
  landing serve --mode minimal           # Static files and the basic API only
  landing serve --project-root ../cortex # Read statistics from another checkout`,
	RunE: runServe,
}

var serveNoLive bool

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().IntP("port", "p", 8000, "Port to serve on")
	serveCmd.Flags().String("mode", config.ModeAuto, "Router mode (auto, full, minimal)")
	serveCmd.Flags().String("changelog", "", "Changelog path (default is CHANGELOG.md in the project root)")
	serveCmd.Flags().BoolVar(&serveNoLive, "no-live", false, "Disable the live statistics feed")

	SetViperBindings(serveCmd, map[string]string{
		"host":      "server.host",
		"port":      "server.port",
		"mode":      "server.mode",
		"changelog": "paths.changelog",
	})
	AddFlagValidation(serveCmd, "port", ValidatePort)
	AddFlagValidation(serveCmd, "mode", func(v string) error {
		return ValidateChoice(v, []string{config.ModeAuto, config.ModeFull, config.ModeMinimal})
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveNoLive {
		viper.Set("live.enabled", false)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	fsys := afero.NewOsFs()
	layout := landing.NewLayout(cfg.Paths.LandingDir)
	if exists, _ := afero.Exists(fsys, layout.Index); !exists {
		fmt.Fprint(cmd.ErrOrStderr(), lerrors.FormatSuggestions(
			"Warning: "+layout.Index+" not found, / will serve a placeholder page",
			lerrors.LandingPageMissing(suggestionContext(cfg)),
		))
	}

	srv, err := server.New(cfg, fsys, logger)
	if err != nil {
		return err
	}
	if err := srv.Listen(); err != nil {
		_ = srv.Close()
		return lerrors.NewEnhancedError(
			"Failed to start server",
			err,
			lerrors.ServerStartError(err, cfg.Server.Port, suggestionContext(cfg)),
		)
	}

	printBanner(cmd.OutOrStdout(), cfg, srv)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Start(ctx)
}

func printBanner(w io.Writer, cfg *config.Config, srv *server.Server) {
	bold := color.New(color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	dim := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(w, "%s serving on %s\n", bold("CortexOS landing"), cyan("http://"+srv.Addr()))
	fmt.Fprintf(w, "  %s %s\n", dim("router: "), srv.Kind())
	if srv.Live() {
		fmt.Fprintf(w, "  %s %s\n", dim("live:   "), cyan("ws://"+srv.Addr()+"/ws"))
	}
	fmt.Fprintf(w, "  %s %s\n", dim("landing:"), cfg.Paths.LandingDir)
	fmt.Fprintf(w, "  %s %s\n", dim("project:"), cfg.Paths.ProjectRoot)
	fmt.Fprintln(w, dim("Press Ctrl+C to stop"))
}
