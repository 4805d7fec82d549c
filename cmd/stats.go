package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cortexos/landing/internal/stats"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"st"},
	Short:   "Print the project statistics served by /api/stats",
	Long: `Refresh the statistics from the project root and print them.

The manifest version, test file count and builtin plugin count are read from
disk. Every other figure is a published value.

Examples:
  landing stats                       # Table
  landing stats --format json         # The exact /api/stats payload
  landing stats --project-root ../ai  # Another checkout`,
	RunE: runStats,
}

var statsFormat string

func init() {
	rootCmd.AddCommand(statsCmd)
	addOutputFlag(statsCmd, &statsFormat)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tracker := stats.NewTracker(afero.NewOsFs(), stats.WithConventions(cfg.Stats.Conventions()))
	snapshot := tracker.Refresh(context.Background(), cfg.Paths.ProjectRoot)

	out := cmd.OutOrStdout()
	if handled, err := writeStructured(out, statsFormat, snapshot); handled {
		return err
	}
	return printStatsTable(out, snapshot)
}

func printStatsTable(w io.Writer, s stats.Snapshot) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Statistic", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	rows := [][]string{
		{"Version", s.Version},
		{"Tests passing", humanize.Comma(int64(s.TestsPassing))},
		{"Test files", humanize.Comma(int64(s.TestFiles))},
		{"Providers", humanize.Comma(int64(s.Providers))},
		{"Pipeline stages", humanize.Comma(int64(s.PipelineStages))},
		{"Quality gates", humanize.Comma(int64(s.QualityGates))},
		{"Builtin plugins", humanize.Comma(int64(s.BuiltinPlugins))},
		{"Reasoning strategies", humanize.Comma(int64(s.ReasoningStrategies))},
		{"Agent roles", humanize.Comma(int64(s.AgentRoles))},
		{"Competitive benchmarks", humanize.Comma(int64(s.CompetitiveBenchmarks))},
		{"Benchmarks ahead", humanize.Comma(int64(s.BenchmarksAhead))},
		{"Benchmarks competitive", humanize.Comma(int64(s.BenchmarksCompetitive))},
		{"Benchmarks ready", humanize.Comma(int64(s.BenchmarksReady))},
		{"Package size", humanize.IBytes(uint64(s.PackageSizeKB) * 1024)},
		{"Build time", fmt.Sprintf("%d ms", s.BuildTimeMS)},
		{"Last updated", describeTimestamp(s.LastUpdated)},
	}
	if s.LastCommit != "" {
		rows = append(rows, []string{"Last commit", s.LastCommit})
	}

	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// describeTimestamp renders a LastUpdated value as "<timestamp> (<n> ago)".
func describeTimestamp(ts string) string {
	if ts == "" {
		return "never"
	}
	t, err := time.Parse(stats.TimestampLayout, ts)
	if err != nil {
		return ts
	}
	return fmt.Sprintf("%s (%s)", ts, humanize.Time(t))
}
