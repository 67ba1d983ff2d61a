package recipes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cujbench.dev/pkg/cujbench/internal/adapter"
	"cujbench.dev/pkg/cujbench/internal/domain/cuj"
	m "cujbench.dev/pkg/cujbench/internal/model"
)

// recipeFixture wires a Factory over a throwaway source tree and workspace.
type recipeFixture struct {
	factory   *Factory
	fs        adapter.TreeFSAdapter
	layout    *cuj.Layout
	buildType m.BuildType
}

func newRecipeFixture(t *testing.T) *recipeFixture {
	t.Helper()

	root := t.TempDir()
	layout, err := cuj.NewLayout(
		m.Path(filepath.Join(root, "src")),
		m.Path(filepath.Join(root, "out")),
		m.Path(filepath.Join(root, "logs")),
	)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(string(layout.TopDir), 0o755))
	require.NoError(t, os.MkdirAll(string(layout.WorkspaceDir()), 0o755))

	f := &recipeFixture{
		fs:        adapter.NewLocalTreeFSAdapter(),
		layout:    layout,
		buildType: m.BuildSoongOnly,
	}
	f.factory = NewFactory(f.fs, layout, func() m.BuildType { return f.buildType })

	return f
}

// srcFile creates a file under the source tree and returns its path.
func (f *recipeFixture) srcFile(t *testing.T, id m.LogicalID, content string) m.Path {
	t.Helper()

	path := f.layout.MustSrc(id)
	require.NoError(t, os.MkdirAll(filepath.Dir(string(path)), 0o755))
	require.NoError(t, os.WriteFile(string(path), []byte(content), 0o644))

	return path
}

// linkIntoWorkspace mirrors a source path into the workspace as a symlink,
// the way the build tool under test would.
func (f *recipeFixture) linkIntoWorkspace(t *testing.T, src m.Path) {
	t.Helper()

	ws, err := f.layout.WsCounterpart(src)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(string(ws)), 0o755))
	require.NoError(t, os.Symlink(string(src), string(ws)))
}

// wsFile writes a real (non-symlink) file at the workspace counterpart of a
// logical id.
func (f *recipeFixture) wsFile(t *testing.T, id m.LogicalID, content string) m.Path {
	t.Helper()

	ws, err := f.layout.WsCounterpart(f.layout.MustSrc(id))
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(string(ws)), 0o755))
	require.NoError(t, os.WriteFile(string(ws), []byte(content), 0o644))

	return ws
}

func (f *recipeFixture) readSrc(t *testing.T, id m.LogicalID) string {
	t.Helper()

	content, err := os.ReadFile(string(f.layout.MustSrc(id)))
	require.NoError(t, err)

	return string(content)
}
