package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/internal/queue"
)

var decideCmd = &cobra.Command{
	Use:   "decide <item-id>",
	Short: "Approve or reject a queue item",
	Long: `Record a reviewer decision for a queue item in review.

Approval submits the item to the catalog; either outcome updates the
reliability score of the source that reported it.

Examples:
  discover decide 0b6f... --status approved --by alice
  discover decide 0b6f... --status approved --by alice --name "DataVault" --url https://datavault.example.org
  discover decide 0b6f... --status rejected --by bob --reason "not a research tool"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid item id %q: %w", args[0], err)
		}

		decision, err := decisionFromFlags(cmd.Flags())
		if err != nil {
			return err
		}

		it, err := domain.Coordinator.ApplyDecision(cmd.Context(), id, decision)
		if err != nil {
			return err
		}

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), it)
		}
		printDecision(cmd.OutOrStdout(), it)
		return nil
	},
}

func init() {
	addDecisionFlags(decideCmd.Flags())
	decideCmd.MarkFlagRequired("status")
	decideCmd.MarkFlagRequired("by")
	rootCmd.AddCommand(decideCmd)
}

func addDecisionFlags(f *pflag.FlagSet) {
	f.String("status", "", "Decision: approved or rejected")
	f.String("by", "", "Reviewer identity")
	f.String("notes", "", "Reviewer notes")
	f.String("reason", "", "Rejection reason")
	f.String("name", "", "Corrected tool name")
	f.String("url", "", "Corrected tool URL")
	f.String("description", "", "Corrected tool description")
}

// decisionFromFlags builds a validated decision. Only flags given on the
// command line are carried, so an explicit empty --name is still rejected.
func decisionFromFlags(f *pflag.FlagSet) (queue.DecideCommand, error) {
	status, _ := f.GetString("status")
	by, _ := f.GetString("by")

	cmd := queue.DecideCommand{
		Status:          queue.Status(status),
		ReviewedBy:      by,
		Notes:           changed(f, "notes"),
		RejectionReason: changed(f, "reason"),
	}

	edits := queue.Edits{
		Name:        changed(f, "name"),
		URL:         changed(f, "url"),
		Description: changed(f, "description"),
	}
	if edits != (queue.Edits{}) {
		cmd.Edits = &edits
	}

	return cmd, cmd.Validate()
}

func changed(f *pflag.FlagSet, name string) *string {
	if !f.Changed(name) {
		return nil
	}
	v, _ := f.GetString(name)
	return &v
}
