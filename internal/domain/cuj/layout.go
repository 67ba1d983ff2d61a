// Package cuj provides the primitives shared by all scenario recipes:
// path identity between the tracked source tree and its logical ids,
// workspace-relationship verification, and verification combinators.
package cuj

import (
	"fmt"
	"path/filepath"
	"strings"

	m "cujbench.dev/pkg/cujbench/internal/model"
)

// workspaceSubdir is where the build tool materializes the symlink forest
// relative to the out dir.
const workspaceSubdir = "soong/workspace"

// Layout is the process-wide path configuration, constructed once and passed
// by reference into catalog assembly and every recipe that needs it.
type Layout struct {
	// TopDir is the root of the tracked source tree.
	TopDir m.Path
	// OutDir is the build output tree.
	OutDir m.Path
	// LogDir receives run logs; it must never live inside TopDir.
	LogDir m.Path
}

// NewLayout builds a Layout from absolute directory paths.
func NewLayout(topDir, outDir, logDir m.Path) (*Layout, error) {
	for name, dir := range map[string]m.Path{"top": topDir, "out": outDir, "log": logDir} {
		if dir == "" {
			return nil, fmt.Errorf("%s dir is not configured", name)
		}

		if !filepath.IsAbs(string(dir)) {
			return nil, fmt.Errorf("%s dir %q is not absolute", name, dir)
		}
	}

	return &Layout{
		TopDir: m.Path(filepath.Clean(string(topDir))),
		OutDir: m.Path(filepath.Clean(string(outDir))),
		LogDir: m.Path(filepath.Clean(string(logDir))),
	}, nil
}

// Src resolves a logical, repo-relative id to an absolute path under the
// tracked source tree. Ids that would escape the tree are rejected.
func (l *Layout) Src(id m.LogicalID) (m.Path, error) {
	joined := filepath.Join(string(l.TopDir), string(id))
	if !l.Under(m.Path(joined), l.TopDir) && joined != string(l.TopDir) {
		return "", fmt.Errorf("logical id %q escapes the source tree", id)
	}

	return m.Path(joined), nil
}

// MustSrc is Src for ids known valid at compile time (catalog constants).
func (l *Layout) MustSrc(id m.LogicalID) m.Path {
	path, err := l.Src(id)
	if err != nil {
		panic(err)
	}

	return path
}

// DeSrc recovers the logical id from an absolute path under the source tree.
// DeSrc(Src(id)) == id for all valid ids.
func (l *Layout) DeSrc(path m.Path) (m.LogicalID, error) {
	rel, err := filepath.Rel(string(l.TopDir), string(path))
	if err != nil {
		return "", fmt.Errorf("cannot relativize %q against source tree: %w", path, err)
	}

	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is not under the source tree %q", path, l.TopDir)
	}

	return m.LogicalID(rel), nil
}

// WsCounterpart maps a source path to its mirrored location in the derived
// workspace (the symlink forest under the out dir).
func (l *Layout) WsCounterpart(path m.Path) (m.Path, error) {
	id, err := l.DeSrc(path)
	if err != nil {
		return "", err
	}

	return m.Path(filepath.Join(string(l.OutDir), workspaceSubdir, string(id))), nil
}

// WorkspaceDir returns the root of the derived workspace.
func (l *Layout) WorkspaceDir() m.Path {
	return m.Path(filepath.Join(string(l.OutDir), workspaceSubdir))
}

// Under reports whether path lies strictly inside dir.
func (l *Layout) Under(path, dir m.Path) bool {
	rel, err := filepath.Rel(string(dir), string(path))
	if err != nil {
		return false
	}

	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
