// Package recipes builds the reversible mutation scenarios: each recipe is
// a pure constructor returning a model.Group whose steps mutate the tracked
// source tree and verify the derived workspace afterwards. Nothing executes
// at construction time.
package recipes

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"

	"cujbench.dev/pkg/cujbench/internal/adapter"
	"cujbench.dev/pkg/cujbench/internal/domain/cuj"
	m "cujbench.dev/pkg/cujbench/internal/model"
)

// On-disk build-definition file names. SourceBuildFile is the
// source-authored variant; GenBuildFile is the tool-visible merged variant.
const (
	SourceBuildFile = "Android.bp"
	LegacyBuildFile = "BUILD"
	GenBuildFile    = "BUILD.bazel"
)

// Factory constructs scenario groups against one layout and filesystem.
// The active build type is looked up at step execution time so the same
// groups are reusable across differently configured runs.
type Factory struct {
	fs        adapter.TreeFSAdapter
	layout    *cuj.Layout
	buildType func() m.BuildType
}

// NewFactory wires a recipe factory.
func NewFactory(fs adapter.TreeFSAdapter, layout *cuj.Layout, buildType func() m.BuildType) *Factory {
	return &Factory{
		fs:        fs,
		layout:    layout,
		buildType: buildType,
	}
}

// markerLine returns a unique comment line so repeated runs never collide on
// content.
func markerLine() string {
	return fmt.Sprintf("//BOGUS %s\n", uuid.New())
}

// cannedFileContent is the default content for files created by scenarios.
func cannedFileContent() string {
	return fmt.Sprintf("//Test File: safe to delete %s\n", uuid.New())
}

// diffDetail renders a unified diff between the observed and expected text
// for verification failure messages.
func diffDetail(actual, expected string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(actual),
		B:        difflib.SplitLines(expected),
		FromFile: "observed",
		ToFile:   "expected",
		Context:  2,
	})
	if err != nil {
		return ""
	}

	return strings.TrimRight(diff, "\n")
}
