package cmd

import (
	"fmt"
	"io"

	"github.com/cortexos/landing/internal/changelog"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var changelogCmd = &cobra.Command{
	Use:     "changelog",
	Aliases: []string{"log"},
	Short:   "Print the changelog entries served by /api/changelog",
	Long: fmt.Sprintf(`Print the newest version sections of the project changelog.

At most %d sections are shown, each with at most %d changes.`, changelog.MaxEntries, changelog.MaxChanges),
	RunE: runChangelog,
}

var changelogFormat string

func init() {
	rootCmd.AddCommand(changelogCmd)
	addOutputFlag(changelogCmd, &changelogFormat)
}

func runChangelog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	entries := changelog.Read(afero.NewOsFs(), cfg.Paths.Changelog)

	out := cmd.OutOrStdout()
	if handled, err := writeStructured(out, changelogFormat, entries); handled {
		return err
	}
	printChangelog(out, cfg.Paths.Changelog, entries)
	return nil
}

func printChangelog(w io.Writer, path string, entries []changelog.Entry) {
	if len(entries) == 0 {
		fmt.Fprintf(w, "No changelog entries in %s\n", path)
		return
	}

	heading := color.New(color.Bold).SprintFunc()
	for i, e := range entries {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, heading(e.Version))
		for _, c := range e.Changes {
			fmt.Fprintf(w, "  - %s\n", c)
		}
	}
}
