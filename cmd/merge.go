package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cujbench.dev/pkg/cujbench/internal/domain"
	m "cujbench.dev/pkg/cujbench/internal/model"
)

// mergeCmd represents the merge command.
var mergeCmd = newMergeCmd()

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge sharded run reports into a single report",
		Long:  "Merge reports from shard_* subdirectories into a single reports directory.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			reportsPath := m.Path(viper.GetString(outputFlagName))
			return workflow.Merge(cmd.Context(), domain.MergeArgs{Reports: reportsPath})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(mergeCmd)
}
