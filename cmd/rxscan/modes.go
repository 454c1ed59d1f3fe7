package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/rxscan/internal/api"
	"github.com/jackzampolin/rxscan/internal/pipeline"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List extraction modes",
	RunE: func(cmd *cobra.Command, args []string) error {
		modes := pipeline.DefaultModes().List()
		if api.IsStructuredOutput() {
			return api.Output(modes)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "MODE\tGROUPING\tTEMPERATURES\tDESCRIPTION")
		for _, m := range modes {
			grouping, temps := "-", "-"
			if !m.Direct {
				grouping = m.Strategy
				temps = fmt.Sprintf("%.1f +%.1f", m.TemperatureBase, m.TemperatureStep)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Name, grouping, temps, m.Description)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(modesCmd)
}
