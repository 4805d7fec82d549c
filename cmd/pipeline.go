package cmd

import (
	"io"
	"strconv"

	"github.com/cortexos/landing/internal/catalog"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Print the agent pipeline stages served by /api/pipeline",
	Example: `  landing pipeline
  landing pipeline --format yaml`,
	RunE: runPipeline,
}

var pipelineFormat string

func init() {
	rootCmd.AddCommand(pipelineCmd)
	addOutputFlag(pipelineCmd, &pipelineFormat)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	stages := catalog.Default().PipelineStages()

	out := cmd.OutOrStdout()
	if handled, err := writeStructured(out, pipelineFormat, stages); handled {
		return err
	}
	return printPipelineTable(out, stages)
}

func printPipelineTable(w io.Writer, stages []catalog.PipelineStage) error {
	title := cases.Title(language.English)

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Stage", "Description"})

	rows := make([][]string, 0, len(stages))
	for _, s := range stages {
		rows = append(rows, []string{strconv.Itoa(s.ID), s.Icon + " " + title.String(s.Name), s.Description})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
