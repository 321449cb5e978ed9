package main

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one discovery pass and print its report",
	Long: `Run every enabled watcher, ingest candidates into the queue, enrich
pending items and reconcile approved items with the catalog.

Examples:
  discover run
  discover run --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := domain.Coordinator.Run(cmd.Context())
		if report != nil {
			if jsonOutput {
				if werr := writeJSON(cmd.OutOrStdout(), report); werr != nil {
					return werr
				}
			} else {
				printReport(cmd.OutOrStdout(), report)
			}
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
