package controller

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "cujbench.dev/pkg/cujbench/internal/model"
)

// SimpleUI implements UI using cobra Command's output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	return ctx.Err()
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(_ context.Context) {}

// DisplayCatalog renders the scenario list as a table.
func (s *SimpleUI) DisplayCatalog(ctx context.Context, groups []m.Group) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"#", "Scenario", "Steps"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for i, group := range groups {
		description := group.Description
		if description == "" {
			description = "(infrastructure)"
		}

		table.Append([]string{fmt.Sprintf("%d", i), description, verbsOf(group)})
	}

	table.SetFooter([]string{"", fmt.Sprintf("Total Scenarios %d", len(groups)), ""})
	table.Render()

	s.printf("\n%s", tableBuffer.String())

	return nil
}

func verbsOf(group m.Group) string {
	verbs := make([]string, 0, len(group.Steps))
	for _, step := range group.Steps {
		verbs = append(verbs, step.Verb)
	}

	return strings.Join(verbs, " -> ")
}

// DisplayGroupStart announces the scenario about to run.
func (s *SimpleUI) DisplayGroupStart(ctx context.Context, group m.Group, index, total int) {
	if err := ctx.Err(); err != nil {
		return
	}

	description := group.Description
	if description == "" {
		description = verbsOf(group)
	}

	s.printf("[%d/%d] %s\n", index, total, description)
}

// DisplayStepResult prints the outcome of one step.
func (s *SimpleUI) DisplayStepResult(ctx context.Context, result m.StepResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("  %-8s %-24s %s\n", result.Status, result.Verb, result.Duration.Round(timePrecision))

	if result.Detail != "" && result.Status != m.StatusPassed {
		s.printf("    %s\n", strings.ReplaceAll(result.Detail, "\n", "\n    "))
	}
}

// DisplayReport renders a previously saved run report.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.RunReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Scenario", "Verb", "Status", "Duration"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	for _, result := range report.Results {
		table.Append([]string{
			result.Group,
			result.Verb,
			result.Status.String(),
			result.Duration.Round(timePrecision).String(),
		})
	}

	table.Render()

	s.printf("Build type: %s, started %s\n\n%s", report.BuildType,
		report.StartedAt.Format(timestampLayout), tableBuffer.String())
	s.summaryLine(report)

	return nil
}

// DisplaySummary prints the run totals.
func (s *SimpleUI) DisplaySummary(ctx context.Context, report m.RunReport) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.summaryLine(report)
}

func (s *SimpleUI) summaryLine(report m.RunReport) {
	passed, failed, skipped, errored := report.Counts()
	s.printf("\n%d passed, %d failed, %d skipped, %d errored\n", passed, failed, skipped, errored)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
