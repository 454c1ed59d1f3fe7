package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/rxscan/internal/api"
	"github.com/jackzampolin/rxscan/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if api.IsStructuredOutput() {
			return api.Output(map[string]string{
				"version": version.GitRelease,
				"go":      version.GoInfo,
				"commit":  version.GitCommit,
				"date":    version.GitCommitDate,
			})
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "rxscan %s\n", version.GitRelease)
		fmt.Fprintf(out, "  Go:     %s\n", version.GoInfo)
		fmt.Fprintf(out, "  Commit: %s\n", version.GitCommit)
		fmt.Fprintf(out, "  Date:   %s\n", version.GitCommitDate)
		return nil
	},
}
