package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cujbench.dev/pkg/cujbench/internal/domain"
	m "cujbench.dev/pkg/cujbench/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "View a previously generated run report",
		Long:  "View a previously generated run report from a reports directory.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			reportsPath := m.Path(viper.GetString(outputFlagName))
			return workflow.View(cmd.Context(), domain.ViewArgs{Reports: reportsPath})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
