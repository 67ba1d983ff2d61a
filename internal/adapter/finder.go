package adapter

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	m "cujbench.dev/pkg/cujbench/internal/model"
)

// Finder validates structural assumptions about chosen example paths before
// scenario groups are built around them, so a drifted source tree fails
// catalog construction instead of silently testing the wrong thing.
type Finder interface {
	// Confirm checks glob-style patterns against the tree under root.
	// A plain pattern must match at least one entry; a pattern prefixed
	// with '!' must match none. The first violated expectation is returned.
	Confirm(root m.Path, patterns ...string) error
}

// LocalFinder is the filesystem-walking Finder implementation.
type LocalFinder struct{}

// NewLocalFinder constructs a LocalFinder.
func NewLocalFinder() *LocalFinder {
	return &LocalFinder{}
}

// Confirm walks the tree under root once and evaluates every pattern
// against the collected relative paths. Patterns are independent, so they
// are checked concurrently.
func (f *LocalFinder) Confirm(root m.Path, patterns ...string) error {
	entries, err := collectRelPaths(root)
	if err != nil {
		return fmt.Errorf("cannot inspect %s: %w", root, err)
	}

	var group errgroup.Group

	for _, pattern := range patterns {
		pattern := pattern
		group.Go(func() error {
			return checkPattern(root, pattern, entries)
		})
	}

	return group.Wait()
}

func checkPattern(root m.Path, pattern string, entries []string) error {
	negated := strings.HasPrefix(pattern, "!")
	glob := strings.TrimPrefix(pattern, "!")

	matched := false

	for _, entry := range entries {
		if matchGlob(glob, entry) {
			matched = true
			break
		}
	}

	if negated && matched {
		return fmt.Errorf("%s: unexpected match for %q", root, glob)
	}

	if !negated && !matched {
		return fmt.Errorf("%s: no match for %q", root, glob)
	}

	return nil
}

func collectRelPaths(root m.Path) ([]string, error) {
	var entries []string

	err := filepath.WalkDir(string(root), func(walked string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if walked == string(root) {
			return nil
		}

		rel, relErr := filepath.Rel(string(root), walked)
		if relErr != nil {
			return relErr
		}

		entries = append(entries, filepath.ToSlash(rel))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// matchGlob matches a slash-separated glob against a relative path.
// Components are matched with path.Match; a "**" component matches any
// number of intermediate components, including none.
func matchGlob(glob, rel string) bool {
	return matchComponents(strings.Split(glob, "/"), strings.Split(rel, "/"))
}

func matchComponents(globParts, relParts []string) bool {
	if len(globParts) == 0 {
		return len(relParts) == 0
	}

	if globParts[0] == "**" {
		for skip := 0; skip <= len(relParts); skip++ {
			if matchComponents(globParts[1:], relParts[skip:]) {
				return true
			}
		}

		return false
	}

	if len(relParts) == 0 {
		return false
	}

	ok, err := path.Match(globParts[0], relParts[0])
	if err != nil || !ok {
		return false
	}

	return matchComponents(globParts[1:], relParts[1:])
}
