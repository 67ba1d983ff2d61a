// Package controller provides output adapters for displaying scenario
// catalogs and run progress.
package controller

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "cujbench.dev/pkg/cujbench/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeCatalog StartMode = iota
	ModeRun
)

// StartOption is a functional option for the Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithCatalogMode sets the UI to catalog display mode.
func WithCatalogMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeCatalog
	}
}

// WithRunMode sets the UI to scenario execution mode.
func WithRunMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRun
	}
}

// UI defines how catalogs, step results, and run summaries reach the
// operator. Implementations can use different output methods (simple text,
// TUI).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context)
	DisplayCatalog(ctx context.Context, groups []m.Group) error
	DisplayGroupStart(ctx context.Context, group m.Group, index, total int)
	DisplayStepResult(ctx context.Context, result m.StepResult)
	DisplayReport(ctx context.Context, report m.RunReport) error
	DisplaySummary(ctx context.Context, report m.RunReport)
}

// NewUI returns the TUI when stdout is interactive, the plain UI otherwise.
func NewUI(cmd *cobra.Command, interactive bool) UI {
	if interactive {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
