package adapter

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	m "cujbench.dev/pkg/cujbench/internal/model"
)

// ModulePredicate selects build-definition modules by type and name.
type ModulePredicate func(moduleType, name string) bool

// TypeIn matches modules whose type is one of the given types.
func TypeIn(types ...string) ModulePredicate {
	return func(moduleType, _ string) bool {
		for _, t := range types {
			if moduleType == t {
				return true
			}
		}

		return false
	}
}

// NameIn matches modules whose name is one of the given names.
func NameIn(names ...string) ModulePredicate {
	return func(_, name string) bool {
		for _, n := range names {
			if name == n {
				return true
			}
		}

		return false
	}
}

// Cloner scales scenario coverage by duplicating every build-definition
// module matching a predicate beneath each root, without hand-writing
// per-target recipes.
type Cloner interface {
	// GetGroup returns a clone/revert step pair covering every matching
	// module under each root. A root may be a build file or a directory.
	GetGroup(roots map[m.Path]ModulePredicate, description string) (m.Group, error)
}

// LocalCloner is the regex-scanning Cloner implementation. It understands
// the `type { name: "...", ... }` module shape of source-authored build
// files; it does not parse the build-definition language.
type LocalCloner struct {
	fs TreeFSAdapter
}

// NewLocalCloner constructs a LocalCloner over the given filesystem.
func NewLocalCloner(fsAdapter TreeFSAdapter) *LocalCloner {
	return &LocalCloner{fs: fsAdapter}
}

const sourceBuildFileName = "Android.bp"

var moduleHeaderRe = regexp.MustCompile(`(?m)^(\w+)\s*\{`)
var moduleNameRe = regexp.MustCompile(`name:\s*"([^"]+)"`)

// buildModule is one module occurrence inside a build file.
type buildModule struct {
	moduleType string
	name       string
	text       string
}

// GetGroup scans the roots at construction time so an unmatched predicate
// fails catalog assembly, and returns steps that append renamed clones and
// restore the original files verbatim.
func (c *LocalCloner) GetGroup(roots map[m.Path]ModulePredicate, description string) (m.Group, error) {
	matched := map[m.Path][]buildModule{}
	total := 0

	for root, predicate := range roots {
		files, err := c.buildFilesUnder(root)
		if err != nil {
			return m.Group{}, err
		}

		for _, file := range files {
			modules, err := c.matchingModules(file, predicate)
			if err != nil {
				return m.Group{}, err
			}

			if len(modules) > 0 {
				matched[file] = modules
				total += len(modules)
			}
		}
	}

	if total == 0 {
		return m.Group{}, fmt.Errorf("no modules matched for clone group %q", description)
	}

	originals := map[m.Path][]byte{}

	clone := func() error {
		if len(originals) > 0 {
			return fmt.Errorf("clone group %q already applied; revert first", description)
		}

		for file, modules := range matched {
			text, err := c.fs.ReadFile(file)
			if err != nil {
				return err
			}

			originals[file] = text

			var appended strings.Builder

			appended.Write(text)

			for i, module := range modules {
				cloneName := fmt.Sprintf("%s_clone_%d", module.name, i)
				appended.WriteString("\n")
				appended.WriteString(strings.Replace(
					module.text, fmt.Sprintf("%q", module.name), fmt.Sprintf("%q", cloneName), 1))
				appended.WriteString("\n")
			}

			if err := c.fs.WriteFile(file, []byte(appended.String()), 0o644); err != nil {
				return err
			}
		}

		return nil
	}

	revert := func() error {
		for file, text := range originals {
			if err := c.fs.WriteFile(file, text, 0o644); err != nil {
				return err
			}
		}

		clear(originals)

		return nil
	}

	return m.Group{
		Description: fmt.Sprintf("clone %d %s", total, description),
		Steps: []m.Step{
			{Verb: "clone", ApplyChange: clone},
			{Verb: "revert", ApplyChange: revert},
		},
	}, nil
}

// buildFilesUnder resolves a root to the build files it covers.
func (c *LocalCloner) buildFilesUnder(root m.Path) ([]m.Path, error) {
	info, err := c.fs.Lstat(root)
	if err != nil {
		return nil, fmt.Errorf("clone root %s: %w", root, err)
	}

	if !info.IsDir() {
		return []m.Path{root}, nil
	}

	var files []m.Path

	err = filepath.WalkDir(string(root), func(walked string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !entry.IsDir() && filepath.Base(walked) == sourceBuildFileName {
			files = append(files, m.Path(walked))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// matchingModules extracts the modules of a build file selected by the
// predicate.
func (c *LocalCloner) matchingModules(file m.Path, predicate ModulePredicate) ([]buildModule, error) {
	text, err := c.fs.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var modules []buildModule

	for _, header := range moduleHeaderRe.FindAllSubmatchIndex(text, -1) {
		body, end := balancedBraces(text, header[1]-1)
		if end < 0 {
			continue
		}

		moduleText := string(text[header[0]:end])

		nameMatch := moduleNameRe.FindStringSubmatch(body)
		if nameMatch == nil {
			continue
		}

		moduleType := string(text[header[2]:header[3]])
		if predicate(moduleType, nameMatch[1]) {
			modules = append(modules, buildModule{
				moduleType: moduleType,
				name:       nameMatch[1],
				text:       moduleText,
			})
		}
	}

	return modules, nil
}

// balancedBraces returns the text of the brace block opening at start and
// the index just past its closing brace, or -1 when unbalanced.
func balancedBraces(text []byte, start int) (string, int) {
	depth := 0

	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return string(text[start : i+1]), i + 1
			}
		}
	}

	return "", -1
}
