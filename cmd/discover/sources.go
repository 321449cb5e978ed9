package main

import (
	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List discovery sources and their reliability",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := domain.Sources.List(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), list)
		}
		printSources(cmd.OutOrStdout(), list)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
