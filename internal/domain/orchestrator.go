package domain

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cujbench.dev/pkg/cujbench/internal/adapter"
	"cujbench.dev/pkg/cujbench/internal/domain/cuj"
	m "cujbench.dev/pkg/cujbench/internal/model"
)

// Orchestrator executes one scenario group: for each step it applies the
// mutation, invokes the incremental build under test, and runs the step's
// verification. Execution is strictly sequential.
type Orchestrator interface {
	RunGroup(ctx context.Context, group m.Group) []m.StepResult
}

type orchestrator struct {
	buildRunner adapter.BuildRunnerAdapter
	layout      *cuj.Layout
}

// NewOrchestrator constructs an Orchestrator over the given build runner.
func NewOrchestrator(buildRunner adapter.BuildRunnerAdapter, layout *cuj.Layout) Orchestrator {
	return &orchestrator{
		buildRunner: buildRunner,
		layout:      layout,
	}
}

// outputTailLimit bounds how much build output lands in a step result.
const outputTailLimit = 2000

// RunGroup runs the group's steps in order. A failed mutation aborts the
// group because the tree state is unknown; a failed build or verification is
// recorded and execution continues so the later inverse steps can still
// restore the tree to its original state.
func (o *orchestrator) RunGroup(ctx context.Context, group m.Group) []m.StepResult {
	results := make([]m.StepResult, 0, len(group.Steps))

	for _, step := range group.Steps {
		result, abort := o.runStep(ctx, group, step)
		results = append(results, result)

		if abort {
			break
		}
	}

	return results
}

func (o *orchestrator) runStep(ctx context.Context, group m.Group, step m.Step) (result m.StepResult, abort bool) {
	start := time.Now()
	result = m.StepResult{Group: group.Description, Verb: step.Verb}

	defer func() {
		result.Duration = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		result.Status = m.StatusError
		result.Detail = err.Error()

		return result, true
	}

	if err := step.ApplyChange(); err != nil {
		slog.Error("mutation failed, aborting group", "group", group.Description, "verb", step.Verb, "error", err)
		result.Status = m.StatusError
		result.Detail = err.Error()

		return result, true
	}

	output, err := o.buildRunner.Build(ctx, o.layout.TopDir)
	if err != nil {
		slog.Error("build failed", "group", group.Description, "verb", step.Verb, "error", err)
		result.Status = m.StatusError
		result.Detail = "build: " + err.Error() + "\n" + tail(output, outputTailLimit)

		return result, false
	}

	result.Status, result.Detail = o.verify(step)

	return result, false
}

func (o *orchestrator) verify(step m.Step) (m.StepStatus, string) {
	if step.Verify == nil {
		return m.StatusPassed, ""
	}

	err := step.Verify()
	if err == nil {
		return m.StatusPassed, ""
	}

	if errors.Is(err, m.ErrVerificationSkipped) {
		return m.StatusSkipped, err.Error()
	}

	return m.StatusFailed, err.Error()
}

func tail(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	return s[len(s)-limit:]
}
