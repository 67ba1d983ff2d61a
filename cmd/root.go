// Package cmd provides the root command and CLI setup for cujbench.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"cujbench.dev/pkg/cujbench/internal/adapter"
	"cujbench.dev/pkg/cujbench/internal/controller"
	"cujbench.dev/pkg/cujbench/internal/domain"
	"cujbench.dev/pkg/cujbench/internal/domain/cuj"
	"cujbench.dev/pkg/cujbench/internal/domain/recipes"
	m "cujbench.dev/pkg/cujbench/internal/model"
)

var fsAdapter adapter.TreeFSAdapter
var finder adapter.Finder
var cloner adapter.Cloner
var buildRunner adapter.BuildRunnerAdapter
var resultStore adapter.ResultStore
var layout *cuj.Layout
var catalog domain.Catalog
var orchestrator domain.Orchestrator
var workflow domain.Workflow
var ui controller.UI

// reportsOutputDirFlag is a root-level flag shared by commands that
// read/write run reports.
var reportsOutputDirFlag string

// buildTypeFlag selects the build configuration mode scenarios run under.
var buildTypeFlag string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalTreeFSAdapter()
	finder = adapter.NewLocalFinder()
	cloner = adapter.NewLocalCloner(fsAdapter)
	resultStore = adapter.NewLocalResultStore()

	resolved, err := resolveLayout()
	cobra.CheckErr(err)
	layout = resolved

	buildRunner = adapter.NewLocalBuildRunnerAdapter(
		viper.GetStringSlice(buildCommandKey),
		time.Duration(viper.GetInt64(buildTimeoutKey))*time.Second,
	)

	factory := recipes.NewFactory(fsAdapter, layout, currentBuildType)
	catalog = domain.NewCatalog(fsAdapter, finder, cloner, layout, factory)
	orchestrator = domain.NewOrchestrator(buildRunner, layout)
	workflow = domain.NewWorkflow(catalog, orchestrator, resultStore, ui, currentBuildType)
}

const rootLongDescription = `Cujbench generates and runs reversible filesystem-mutation scenarios
(CUJs) against a source tree to benchmark and validate an incremental build
pipeline: each scenario mutates part of the tree, triggers a build, and
verifies that the derived workspace reached the expected state before
undoing the change.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cujbench",
		Short: "Incremental-build scenario benchmark tool",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logPath := filepath.Join(string(layout.LogDir), viper.GetString(logFilenameKey))
			configureLogger(logPath, viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for scenario run reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringVarP(
		&buildTypeFlag, buildTypeFlagName, "b",
		viper.GetString(buildTypeKey),
		fmt.Sprintf("build configuration mode %v", m.BuildTypes()),
	)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(buildTypeFlagName), buildTypeKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// resolveLayout builds the process-wide path configuration from config and
// environment, defaulting the source root to the working directory.
func resolveLayout() (*cuj.Layout, error) {
	top := viper.GetString(topDirKey)
	if top == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}

		top = cwd
	}

	top, err := filepath.Abs(top)
	if err != nil {
		return nil, err
	}

	out := viper.GetString(outDirKey)
	if out == "" {
		out = filepath.Join(top, "out")
	}

	out, err = filepath.Abs(out)
	if err != nil {
		return nil, err
	}

	logDir := viper.GetString(logDirKey)
	if logDir == "" {
		logDir = filepath.Join(os.TempDir(), configBaseName)
	}

	logDir, err = filepath.Abs(logDir)
	if err != nil {
		return nil, err
	}

	return cuj.NewLayout(m.Path(top), m.Path(out), m.Path(logDir))
}

// currentBuildType resolves the active build type lazily so recipes observe
// flag and env changes at execution time, not at catalog construction.
func currentBuildType() m.BuildType {
	buildType, err := m.ParseBuildType(viper.GetString(buildTypeKey))
	if err != nil {
		slog.Warn("invalid build type, falling back", "error", err, "fallback", defaultBuildType)
		return m.BuildType(defaultBuildType)
	}

	return buildType
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
