package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cujbench.dev/pkg/cujbench/internal/domain"
	m "cujbench.dev/pkg/cujbench/internal/model"
)

var runFilterFlag string
var runDryRunFlag bool

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run scenario groups against the source tree",
		Long: `Execute the scenario catalog: for every step of every selected group,
apply the mutation, invoke the configured build command, and verify the
derived workspace. Each group leaves the tree exactly as it found it.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.Run(cmd.Context(), domain.RunArgs{
				Filter:   runFilterFlag,
				DryRun:   runDryRunFlag,
				Reports:  m.Path(viper.GetString(outputFlagName)),
				SpillDir: string(layout.LogDir),
			})
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&runFilterFlag, filterFlagName, "g", "",
		"run only groups whose description contains this substring")
	cmd.Flags().BoolVar(&runDryRunFlag, dryRunFlagName, false,
		"list the selected groups without mutating anything")
}
