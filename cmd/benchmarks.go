package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/cortexos/landing/internal/catalog"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var benchmarksCmd = &cobra.Command{
	Use:     "benchmarks",
	Aliases: []string{"bench"},
	Short:   "Print the competitive benchmark table served by /api/benchmarks",
	Long: `Print the published benchmark results grouped by category.

Examples:
  landing benchmarks                       # Every category
  landing benchmarks --status ahead        # Only results where CortexOS leads
  landing benchmarks --category Security   # One category
  landing benchmarks --format json         # The exact /api/benchmarks payload`,
	RunE: runBenchmarks,
}

var (
	benchmarksFormat   string
	benchmarksStatus   string
	benchmarksCategory string
)

var (
	aheadColor       = color.New(color.FgGreen, color.Bold)
	competitiveColor = color.New(color.FgCyan)
	readyColor       = color.New(color.FgYellow)
	gapColor         = color.New(color.FgRed)
)

func init() {
	rootCmd.AddCommand(benchmarksCmd)

	addOutputFlag(benchmarksCmd, &benchmarksFormat)
	benchmarksCmd.Flags().StringVar(&benchmarksStatus, "status", "", "Only show results with this status (ahead, competitive, ready, gap)")
	benchmarksCmd.Flags().StringVar(&benchmarksCategory, "category", "", "Only show categories whose name contains this text")
	AddFlagValidation(benchmarksCmd, "status", func(v string) error {
		if v == "" {
			return nil
		}
		return ValidateChoice(v, []string{
			string(catalog.StatusAhead),
			string(catalog.StatusCompetitive),
			string(catalog.StatusReady),
			string(catalog.StatusGap),
		})
	})
}

func runBenchmarks(cmd *cobra.Command, args []string) error {
	benchmarks := filterBenchmarks(
		catalog.Default().Benchmarks(),
		catalog.Status(strings.ToLower(benchmarksStatus)),
		benchmarksCategory,
	)

	out := cmd.OutOrStdout()
	if handled, err := writeStructured(out, benchmarksFormat, benchmarks); handled {
		return err
	}
	return printBenchmarksTable(out, benchmarks)
}

// filterBenchmarks keeps results matching status (if set) in categories whose
// name contains category (if set). Categories left empty are dropped.
func filterBenchmarks(b catalog.Benchmarks, status catalog.Status, category string) catalog.Benchmarks {
	if status == "" && category == "" {
		return b
	}

	var out catalog.Benchmarks
	for _, c := range b {
		if category != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(category)) {
			continue
		}
		kept := catalog.Category{Name: c.Name}
		for _, r := range c.Results {
			if status == "" || r.Status == status {
				kept.Results = append(kept.Results, r)
			}
		}
		if len(kept.Results) > 0 {
			out = append(out, kept)
		}
	}
	return out
}

func printBenchmarksTable(w io.Writer, b catalog.Benchmarks) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Category", "Benchmark", "Status", "Before", "After"})

	var rows [][]string
	for _, c := range b {
		for _, r := range c.Results {
			rows = append(rows, []string{c.Name, r.Name, statusLabel(r.Status), r.Before, r.After})
		}
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "%d ahead, %d competitive, %d ready, %d gap\n",
		b.Count(catalog.StatusAhead),
		b.Count(catalog.StatusCompetitive),
		b.Count(catalog.StatusReady),
		b.Count(catalog.StatusGap))
	return nil
}

func statusLabel(s catalog.Status) string {
	switch s {
	case catalog.StatusAhead:
		return aheadColor.Sprint(s)
	case catalog.StatusCompetitive:
		return competitiveColor.Sprint(s)
	case catalog.StatusReady:
		return readyColor.Sprint(s)
	case catalog.StatusGap:
		return gapColor.Sprint(s)
	default:
		return string(s)
	}
}
