package recipes

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"cujbench.dev/pkg/cujbench/internal/domain/cuj"
	m "cujbench.dev/pkg/cujbench/internal/model"
)

// contentVerifiers returns a pair of verifications over a merged
// build-definition file in the workspace: the prover asserts the injected
// line is present, the disprover asserts it is absent. Neither applies under
// a build type with no merge step, so both are skip-wrapped.
func (f *Factory) contentVerifiers(wsBuildFile m.Path, content string) (prover, disprover m.Action) {
	search := func() (bool, string, error) {
		text, err := f.fs.ReadFile(wsBuildFile)
		if err != nil {
			return false, "", fmt.Errorf("cannot read merged build file %s: %w", wsBuildFile, err)
		}

		for _, line := range strings.SplitAfter(string(text), "\n") {
			if line == content {
				return true, string(text), nil
			}
		}

		return false, string(text), nil
	}

	prover = cuj.SkipFor(f.buildType, func() error {
		found, text, err := search()
		if err != nil {
			return err
		}

		if !found {
			return fmt.Errorf("%s expected to contain %q\n%s",
				wsBuildFile, strings.TrimRight(content, "\n"), diffDetail(text, text+content))
		}

		slog.Info("VERIFIED merged build file contains line", "file", wsBuildFile)

		return nil
	}, m.BuildSoongOnly)

	disprover = cuj.SkipFor(f.buildType, func() error {
		found, text, err := search()
		if err != nil {
			return err
		}

		if found {
			return fmt.Errorf("%s not expected to contain %q\n%s",
				wsBuildFile, strings.TrimRight(content, "\n"),
				diffDetail(text, strings.Replace(text, content, "", 1)))
		}

		slog.Info("VERIFIED merged build file omits line", "file", wsBuildFile)

		return nil
	}, m.BuildSoongOnly)

	return prover, disprover
}

// wsMergedBuildFile returns the workspace-side merged build file next to the
// given source build file.
func (f *Factory) wsMergedBuildFile(buildFile m.Path) (m.Path, error) {
	wsBuildFile, err := f.layout.WsCounterpart(buildFile)
	if err != nil {
		return "", err
	}

	return m.Path(filepath.Join(filepath.Dir(string(wsBuildFile)), GenBuildFile)), nil
}

// ModifyRevertKeptBuildFile appends a marker to a build file whose manually
// authored content survives regeneration, additionally verifying that the
// merged workspace build file gains and then loses the marker.
func (f *Factory) ModifyRevertKeptBuildFile(buildFile m.Path) (m.Group, error) {
	content := markerLine()

	group, err := f.ModifyRevert(buildFile, content)
	if err != nil {
		return m.Group{}, err
	}

	wsBuildFile, err := f.wsMergedBuildFile(buildFile)
	if err != nil {
		return m.Group{}, err
	}

	prover, disprover := f.contentVerifiers(wsBuildFile, content)

	return withMergeChecks(group, prover, disprover), nil
}

// CreateDeleteKeptBuildFile creates and deletes a build file under a
// directory where existing build files are kept. The expected workspace
// relationship depends on which variant is created: the merged name appears
// as a real file, the legacy name as a symlink.
func (f *Factory) CreateDeleteKeptBuildFile(buildFile m.Path) (m.Group, error) {
	var ws m.Relation

	switch filepath.Base(string(buildFile)) {
	case GenBuildFile:
		ws = m.NotUnderSymlink
	case LegacyBuildFile:
		ws = m.Symlink
	default:
		return m.Group{}, fmt.Errorf("illegal name for a build file %s", buildFile)
	}

	content := markerLine()

	group, err := f.CreateDelete(buildFile, ws, content)
	if err != nil {
		return m.Group{}, err
	}

	wsBuildFile, err := f.wsMergedBuildFile(buildFile)
	if err != nil {
		return m.Group{}, err
	}

	prover, disprover := f.contentVerifiers(wsBuildFile, content)

	return withMergeChecks(group, prover, disprover), nil
}

// CreateDeleteUnkeptBuildFile creates and deletes a build file under a
// directory where build files are fully regenerated: the injected marker
// must never reach the merged workspace build file, neither after create nor
// after delete.
func (f *Factory) CreateDeleteUnkeptBuildFile(buildFile m.Path) (m.Group, error) {
	content := markerLine()

	group, err := f.CreateDelete(buildFile, m.Symlink, content)
	if err != nil {
		return m.Group{}, err
	}

	wsBuildFile, err := f.wsMergedBuildFile(buildFile)
	if err != nil {
		return m.Group{}, err
	}

	_, disprover := f.contentVerifiers(wsBuildFile, content)

	return withMergeChecks(group, disprover, disprover), nil
}

// withMergeChecks appends the given content verifications to the two steps
// of a create/delete or modify/revert pair.
func withMergeChecks(group m.Group, first, second m.Action) m.Group {
	forward, backward := group.Steps[0], group.Steps[1]

	return m.Group{
		Description: group.Description,
		Steps: []m.Step{
			{
				Verb:        forward.Verb,
				ApplyChange: forward.ApplyChange,
				Verify:      cuj.Sequence(forward.Verify, first),
			},
			{
				Verb:        backward.Verb,
				ApplyChange: backward.ApplyChange,
				Verify:      cuj.Sequence(backward.Verify, second),
			},
		},
	}
}
