package recipes

import (
	"fmt"
	"path/filepath"

	m "cujbench.dev/pkg/cujbench/internal/model"
)

// ReplaceFileWithDir models a structurally significant change: create a
// file, replace it with a same-named directory containing a build-definition
// file, then delete the directory. Downstream build tooling must turn the
// leaf entry into a package and back.
func (f *Factory) ReplaceFileWithDir(path m.Path) (m.Group, error) {
	fileGroup, err := f.CreateDelete(path, m.Symlink, "")
	if err != nil {
		return m.Group{}, err
	}

	createFile, deleteFile := fileGroup.Steps[0], fileGroup.Steps[1]

	// The build file is always a symlink in the workspace, so its parent
	// directory is a real directory there.
	dirGroup, err := f.CreateDeleteBuildFile(m.Path(filepath.Join(string(path), SourceBuildFile)))
	if err != nil {
		return m.Group{}, err
	}

	createDir, deleteDir := dirGroup.Steps[0], dirGroup.Steps[1]

	replace := func() error {
		if applyErr := deleteFile.ApplyChange(); applyErr != nil {
			return applyErr
		}

		return createDir.ApplyChange()
	}

	return m.Group{
		Description: fileGroup.Description,
		Steps: []m.Step{
			createFile,
			{
				Verb:        fmt.Sprintf("%s/%s instead of", fileGroup.Description, SourceBuildFile),
				ApplyChange: replace,
				Verify:      createDir.Verify,
			},
			deleteDir,
		},
	}, nil
}
