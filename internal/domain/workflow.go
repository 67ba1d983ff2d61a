package domain

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"cujbench.dev/pkg/cujbench/internal/adapter"
	"cujbench.dev/pkg/cujbench/internal/controller"
	m "cujbench.dev/pkg/cujbench/internal/model"
	"cujbench.dev/pkg/cujbench/pkg"
)

// RunArgs contains the arguments for executing scenarios.
type RunArgs struct {
	// Filter keeps only groups whose description contains the substring;
	// infrastructure groups (empty description) always run.
	Filter string
	// DryRun lists the selected scenarios without mutating anything.
	DryRun bool
	// Reports is the directory receiving the run report.
	Reports m.Path
	// SpillDir receives the incremental step-result log; empty means the
	// system temp dir.
	SpillDir string
}

// ViewArgs contains the arguments for viewing a saved report.
type ViewArgs struct {
	Reports m.Path
}

// MergeArgs contains the arguments for merging reports.
type MergeArgs struct {
	Reports m.Path
}

// Workflow ties the catalog, the orchestrator, persistence, and the UI into
// the operations behind the CLI commands.
type Workflow interface {
	List(ctx context.Context) error
	Run(ctx context.Context, args RunArgs) error
	View(ctx context.Context, args ViewArgs) error
	Merge(ctx context.Context, args MergeArgs) error
}

type workflow struct {
	catalog      Catalog
	orchestrator Orchestrator
	store        adapter.ResultStore
	ui           controller.UI
	buildType    func() m.BuildType
}

// NewWorkflow creates a Workflow with the provided dependencies.
func NewWorkflow(
	catalog Catalog,
	orchestrator Orchestrator,
	store adapter.ResultStore,
	ui controller.UI,
	buildType func() m.BuildType,
) Workflow {
	return &workflow{
		catalog:      catalog,
		orchestrator: orchestrator,
		store:        store,
		ui:           ui,
		buildType:    buildType,
	}
}

// List displays the assembled scenario catalog.
func (w *workflow) List(ctx context.Context) error {
	groups, err := w.catalog.Groups()
	if err != nil {
		slog.Error("catalog assembly failed", "error", err)
		return fmt.Errorf("assemble catalog: %w", err)
	}

	if err := w.ui.Start(ctx, controller.WithCatalogMode()); err != nil {
		return err
	}

	defer w.ui.Close(ctx)

	return w.ui.DisplayCatalog(ctx, groups)
}

// Run executes the selected scenario groups sequentially, persisting each
// step result as it completes and a full report at the end.
func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	groups, err := w.catalog.Groups()
	if err != nil {
		slog.Error("catalog assembly failed", "error", err)
		return fmt.Errorf("assemble catalog: %w", err)
	}

	selected := selectGroups(groups, args.Filter)
	if len(selected) == 0 {
		return fmt.Errorf("no scenarios match filter %q", args.Filter)
	}

	if args.DryRun {
		return w.ui.DisplayCatalog(ctx, selected)
	}

	spill, err := pkg.NewSpillLog[m.StepResult](args.SpillDir)
	if err != nil {
		return fmt.Errorf("open step-result log: %w", err)
	}

	defer func() {
		_ = spill.Close()
	}()

	if err := w.ui.Start(ctx, controller.WithRunMode()); err != nil {
		return err
	}

	defer w.ui.Close(ctx)

	report := m.RunReport{
		BuildType: w.buildType(),
		StartedAt: time.Now(),
	}

	for i, group := range selected {
		w.ui.DisplayGroupStart(ctx, group, i+1, len(selected))
		slog.Info("running scenario", "group", group.Description, "index", i+1, "total", len(selected))

		for _, result := range w.orchestrator.RunGroup(ctx, group) {
			if spillErr := spill.Append(result); spillErr != nil {
				slog.Error("failed to spill step result", "error", spillErr)
			}

			w.ui.DisplayStepResult(ctx, result)
			report.Results = append(report.Results, result)
		}

		if err := ctx.Err(); err != nil {
			break
		}
	}

	if err := w.store.SaveReport(args.Reports, report); err != nil {
		return fmt.Errorf("save report: %w", err)
	}

	w.ui.DisplaySummary(ctx, report)

	_, failed, _, errored := report.Counts()
	if failed+errored > 0 {
		return fmt.Errorf("%d scenario steps failed or errored", failed+errored)
	}

	return ctx.Err()
}

// View renders a previously saved run report.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	report, err := w.store.LoadReport(args.Reports)
	if err != nil {
		return err
	}

	return w.ui.DisplayReport(ctx, report)
}

// Merge combines the reports found in subdirectories of the reports dir,
// for benchmark runs split across machines, into one report at the top.
func (w *workflow) Merge(ctx context.Context, args MergeArgs) error {
	reports, err := w.store.LoadSubReports(args.Reports)
	if err != nil {
		return err
	}

	if len(reports) == 0 {
		return fmt.Errorf("no reports found under %s", args.Reports)
	}

	merged := m.RunReport{
		BuildType: reports[0].BuildType,
		StartedAt: reports[0].StartedAt,
	}

	for _, report := range reports {
		if report.StartedAt.Before(merged.StartedAt) {
			merged.StartedAt = report.StartedAt
		}

		merged.Results = append(merged.Results, report.Results...)
	}

	sort.SliceStable(merged.Results, func(i, j int) bool {
		return merged.Results[i].Group < merged.Results[j].Group
	})

	if err := w.store.SaveReport(args.Reports, merged); err != nil {
		return fmt.Errorf("save merged report: %w", err)
	}

	w.ui.DisplaySummary(ctx, merged)

	return nil
}

func selectGroups(groups []m.Group, filter string) []m.Group {
	if filter == "" {
		return groups
	}

	var selected []m.Group

	for _, group := range groups {
		if group.Description == "" || strings.Contains(group.Description, filter) {
			selected = append(selected, group)
		}
	}

	return selected
}
