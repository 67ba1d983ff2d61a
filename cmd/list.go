package cmd

import (
	"github.com/spf13/cobra"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the scenario catalog",
		Long: `Assemble the scenario catalog against the configured source tree and list
every group with its steps. Assembly validates the structural assumptions
the scenarios rely on and fails if the tree has drifted.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.List(cmd.Context())
		},
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
}
