package recipes

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"cujbench.dev/pkg/cujbench/internal/domain/cuj"
	m "cujbench.dev/pkg/cujbench/internal/model"
)

// DeleteRestore returns a pair of steps: the first moves an existing file to
// a backup location outside the tracked trees to mimic deletion, the second
// moves it back. This simulates deletion while preserving content without
// remembering it separately.
//
// ws is the expected workspace relationship once restored; the deletion half
// verifies Omission.
func (f *Factory) DeleteRestore(original m.Path, ws m.Relation) (m.Group, error) {
	tempDir := f.fs.TempDir()
	if f.layout.Under(tempDir, f.layout.TopDir) || tempDir == f.layout.TopDir {
		return m.Group{}, fmt.Errorf("temp dir %s is under the source tree %s", tempDir, f.layout.TopDir)
	}

	if f.layout.Under(tempDir, f.layout.OutDir) || tempDir == f.layout.OutDir {
		return m.Group{}, fmt.Errorf("temp dir %s is under the out dir %s", tempDir, f.layout.OutDir)
	}

	id, err := f.layout.DeSrc(original)
	if err != nil {
		return m.Group{}, err
	}

	backup := m.Path(filepath.Join(
		string(tempDir),
		fmt.Sprintf("%s-%s.bak", filepath.Base(string(original)), uuid.New()),
	))

	moveAway := func() error {
		slog.Warn("MOVING file to mimic deletion", "path", id, "backup", backup)
		return f.fs.Rename(original, backup)
	}

	moveBack := func() error {
		return f.fs.Rename(backup, original)
	}

	return m.Group{
		Description: string(id),
		Steps: []m.Step{
			{Verb: "delete", ApplyChange: moveAway, Verify: cuj.Verifier(f.fs, f.layout, m.Omission, original)},
			{Verb: "restore", ApplyChange: moveBack, Verify: cuj.Verifier(f.fs, f.layout, ws, original)},
		},
	}, nil
}
