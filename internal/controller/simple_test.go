package controller

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "cujbench.dev/pkg/cujbench/internal/model"
)

func simpleUIFixture() (*SimpleUI, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	return NewSimpleUI(cmd), out
}

func testReport() m.RunReport {
	return m.RunReport{
		BuildType: m.BuildSoongOnly,
		StartedAt: time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC),
		Results: []m.StepResult{
			{Group: "bionic/libc", Verb: "modify", Status: m.StatusPassed, Duration: 1200 * time.Millisecond},
			{Group: "bionic/libc", Verb: "revert", Status: m.StatusFailed, Detail: "workspace mismatch"},
			{Group: "art/bogus.txt", Verb: "create", Status: m.StatusSkipped},
		},
	}
}

func TestSimpleUIDisplayCatalog(t *testing.T) {
	ui, out := simpleUIFixture()

	groups := []m.Group{
		{Steps: []m.Step{{Verb: "clean"}}},
		{Description: "bionic/libc/stdio/stdio.cpp", Steps: []m.Step{{Verb: "modify"}, {Verb: "revert"}}},
	}

	require.NoError(t, ui.DisplayCatalog(context.Background(), groups))

	rendered := out.String()
	assert.Contains(t, rendered, "(infrastructure)")
	assert.Contains(t, rendered, "bionic/libc/stdio/stdio.cpp")
	assert.Contains(t, rendered, "modify -> revert")
	assert.Contains(t, rendered, "Total Scenarios 2")
}

func TestSimpleUIDisplayStepResult(t *testing.T) {
	ui, out := simpleUIFixture()

	ui.DisplayStepResult(context.Background(), m.StepResult{
		Verb:     "modify",
		Status:   m.StatusPassed,
		Duration: 1234 * time.Millisecond,
		Detail:   "not shown for passes",
	})
	assert.Contains(t, out.String(), "passed")
	assert.Contains(t, out.String(), "modify")
	assert.NotContains(t, out.String(), "not shown")

	out.Reset()
	ui.DisplayStepResult(context.Background(), m.StepResult{
		Verb:   "revert",
		Status: m.StatusFailed,
		Detail: "workspace mismatch",
	})
	assert.Contains(t, out.String(), "failed")
	assert.Contains(t, out.String(), "workspace mismatch")
}

func TestSimpleUIDisplayGroupStart(t *testing.T) {
	ui, out := simpleUIFixture()

	ui.DisplayGroupStart(context.Background(), m.Group{Description: "art/bogus.txt"}, 3, 41)
	assert.Contains(t, out.String(), "[3/41] art/bogus.txt")

	out.Reset()
	ui.DisplayGroupStart(context.Background(), m.Group{Steps: []m.Step{{Verb: "clean"}}}, 1, 41)
	assert.Contains(t, out.String(), "[1/41] clean")
}

func TestSimpleUIDisplayReport(t *testing.T) {
	ui, out := simpleUIFixture()

	require.NoError(t, ui.DisplayReport(context.Background(), testReport()))

	rendered := out.String()
	assert.Contains(t, rendered, "Build type: soong_only")
	assert.Contains(t, rendered, "2026-08-01 10:30:00")
	assert.Contains(t, rendered, "bionic/libc")
	assert.Contains(t, rendered, "1 passed, 1 failed, 1 skipped, 0 errored")
}

func TestSimpleUIDisplaySummary(t *testing.T) {
	ui, out := simpleUIFixture()

	ui.DisplaySummary(context.Background(), testReport())
	assert.Contains(t, out.String(), "1 passed, 1 failed, 1 skipped, 0 errored")
}

func TestSimpleUIRespectsCancelledContext(t *testing.T) {
	ui, out := simpleUIFixture()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, ui.DisplayCatalog(ctx, nil))
	ui.DisplayStepResult(ctx, m.StepResult{Verb: "modify"})
	ui.DisplaySummary(ctx, testReport())
	assert.Empty(t, out.String())
}
