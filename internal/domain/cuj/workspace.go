package cuj

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cujbench.dev/pkg/cujbench/internal/adapter"
	m "cujbench.dev/pkg/cujbench/internal/model"
)

// Observe determines how the given source path currently appears in the
// derived workspace. It walks the mirrored path from the workspace root,
// classifying the first symlinked ancestor it meets; a missing ancestor or
// entry classifies as Omission.
func Observe(fs adapter.TreeFSAdapter, layout *Layout, file m.Path) (m.Relation, error) {
	wsPath, err := layout.WsCounterpart(file)
	if err != nil {
		return 0, err
	}

	rel, err := filepath.Rel(string(layout.WorkspaceDir()), string(wsPath))
	if err != nil {
		return 0, err
	}

	components := strings.Split(rel, string(filepath.Separator))
	current := string(layout.WorkspaceDir())

	for _, component := range components[:len(components)-1] {
		current = filepath.Join(current, component)

		info, statErr := fs.Lstat(m.Path(current))
		if statErr != nil {
			return m.Omission, nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			return observeUnderLink(fs, layout, m.Path(current), wsPath)
		}
	}

	info, statErr := fs.Lstat(wsPath)
	if statErr != nil {
		return m.Omission, nil
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, linkErr := fs.Readlink(wsPath)
		if linkErr != nil {
			return 0, fmt.Errorf("unreadable workspace symlink %q: %w", wsPath, linkErr)
		}

		if !layout.Under(target, layout.TopDir) && target != layout.TopDir {
			return 0, fmt.Errorf("workspace symlink %q points outside the source tree (%q)", wsPath, target)
		}

		if !fs.Exists(target) {
			slog.Warn("dangling workspace symlink", "wsPath", wsPath, "target", target)
		}

		return m.Symlink, nil
	}

	return m.NotUnderSymlink, nil
}

// observeUnderLink classifies a path whose ancestor in the workspace is a
// symlink: the path is reachable transitively iff its source-side
// counterpart exists under the link target.
func observeUnderLink(fs adapter.TreeFSAdapter, layout *Layout, linkedAncestor, wsPath m.Path) (m.Relation, error) {
	target, err := fs.Readlink(linkedAncestor)
	if err != nil {
		return 0, fmt.Errorf("unreadable workspace symlink %q: %w", linkedAncestor, err)
	}

	if !layout.Under(target, layout.TopDir) && target != layout.TopDir {
		return 0, fmt.Errorf("workspace symlink %q points outside the source tree (%q)", linkedAncestor, target)
	}

	remainder, err := filepath.Rel(string(linkedAncestor), string(wsPath))
	if err != nil {
		return 0, err
	}

	if fs.Exists(m.Path(filepath.Join(string(target), remainder))) {
		return m.UnderSymlink, nil
	}

	return m.Omission, nil
}

// VerifyRelation asserts that file's workspace counterpart has the expected
// relationship, failing loudly with both expectation and observation on
// mismatch.
func VerifyRelation(fs adapter.TreeFSAdapter, layout *Layout, expected m.Relation, file m.Path) error {
	actual, err := Observe(fs, layout, file)
	if err != nil {
		return err
	}

	id, err := layout.DeSrc(file)
	if err != nil {
		return err
	}

	if actual != expected {
		return fmt.Errorf("workspace mismatch for %s: expected %s, observed %s", id, expected, actual)
	}

	slog.Info("VERIFIED workspace relation", "path", id, "relation", expected)

	return nil
}

// Verifier returns the verification action for the given relation, bound to
// one source path. Relation is a closed set; the dispatch lives entirely in
// Observe/VerifyRelation so new variants cannot be added without the switch
// in Relation.String failing first.
func Verifier(fs adapter.TreeFSAdapter, layout *Layout, rel m.Relation, file m.Path) m.Action {
	return func() error {
		return VerifyRelation(fs, layout, rel, file)
	}
}

// Sequence combines verification actions into one: every action runs, the
// first hard failure wins, and the combined action reports skipped only if
// every constituent was skipped.
func Sequence(actions ...m.Action) m.Action {
	return func() error {
		ran, skipped := 0, 0

		for _, action := range actions {
			if action == nil {
				continue
			}

			ran++

			err := action()
			if err == nil {
				continue
			}

			if errors.Is(err, m.ErrVerificationSkipped) {
				skipped++
				continue
			}

			return err
		}

		if ran > 0 && skipped == ran {
			return m.ErrVerificationSkipped
		}

		return nil
	}
}

// SkipFor wraps a verification so it becomes a logging no-op when the
// active build type is in the skip set. The current build type is looked up
// at call time, not at catalog-construction time, so the same catalog is
// reusable across differently configured runs. A skip is always logged and
// surfaced as ErrVerificationSkipped, never conflated with a pass.
func SkipFor(current func() m.BuildType, verify m.Action, modes ...m.BuildType) m.Action {
	return func() error {
		active := current()
		for _, mode := range modes {
			if active == mode {
				slog.Warn("SKIPPED verification", "buildType", active)
				return m.ErrVerificationSkipped
			}
		}

		return verify()
	}
}
