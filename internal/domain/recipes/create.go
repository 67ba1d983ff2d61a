package recipes

import (
	"fmt"
	"path/filepath"

	"cujbench.dev/pkg/cujbench/internal/domain/cuj"
	m "cujbench.dev/pkg/cujbench/internal/model"
)

// CreateDelete returns a pair of steps: the first creates a file (and any
// missing parent directories), the second deletes it. Creation fails if the
// target already exists, which guards against resuming into a dirty tree.
// If creation materialized new parent directories, deletion removes the
// shallowest of them recursively so the pre-existing structure is restored
// exactly.
//
// ws is the expected workspace relationship after creation; deletion always
// verifies Omission.
func (f *Factory) CreateDelete(file m.Path, ws m.Relation, text string) (m.Group, error) {
	if text == "" {
		text = cannedFileContent()
	}

	id, err := f.layout.DeSrc(file)
	if err != nil {
		return m.Group{}, err
	}

	shallowestMissingDir := f.shallowestMissingParent(file)

	create := func() error {
		if f.fs.Exists(file) {
			return fmt.Errorf(
				"file %s already exists; interrupted an earlier run? revert local changes before rerunning", file)
		}

		if mkErr := f.fs.MkdirAll(m.Path(filepath.Dir(string(file))), 0o755); mkErr != nil {
			return mkErr
		}

		return f.fs.CreateFile(file, []byte(text))
	}

	remove := func() error {
		if shallowestMissingDir != "" {
			return f.fs.RemoveAll(shallowestMissingDir)
		}

		return f.fs.Remove(file)
	}

	return m.Group{
		Description: string(id),
		Steps: []m.Step{
			{Verb: "create", ApplyChange: create, Verify: cuj.Verifier(f.fs, f.layout, ws, file)},
			{Verb: "delete", ApplyChange: remove, Verify: cuj.Verifier(f.fs, f.layout, m.Omission, file)},
		},
	}, nil
}

// shallowestMissingParent returns the highest ancestor of file that does not
// exist yet, or "" when all parents are present. Evaluated at construction
// so the delete step knows exactly what the create step materialized.
func (f *Factory) shallowestMissingParent(file m.Path) m.Path {
	var shallowest m.Path

	dir := filepath.Dir(string(file))
	for dir != string(f.layout.TopDir) && dir != string(filepath.Separator) && dir != "." {
		if f.fs.Exists(m.Path(dir)) {
			break
		}

		shallowest = m.Path(dir)
		dir = filepath.Dir(dir)
	}

	return shallowest
}

// CreateDeleteBuildFile is CreateDelete with canned content for a
// source-authored build-definition file, which is always a symlink in the
// workspace.
func (f *Factory) CreateDeleteBuildFile(buildFile m.Path) (m.Group, error) {
	return f.CreateDelete(
		buildFile,
		m.Symlink,
		`filegroup { name: "test-bogus-filegroup", srcs: ["**/*.md"] }`,
	)
}
