package cuj

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "cujbench.dev/pkg/cujbench/internal/model"
)

func testLayout(t *testing.T) *Layout {
	t.Helper()

	root := t.TempDir()
	layout, err := NewLayout(
		m.Path(filepath.Join(root, "src")),
		m.Path(filepath.Join(root, "out")),
		m.Path(filepath.Join(root, "logs")),
	)
	require.NoError(t, err)

	return layout
}

func TestNewLayout(t *testing.T) {
	t.Run("rejects empty dirs", func(t *testing.T) {
		_, err := NewLayout("", "/out", "/logs")
		assert.Error(t, err)
	})

	t.Run("rejects relative dirs", func(t *testing.T) {
		_, err := NewLayout("/src", "out", "/logs")
		assert.Error(t, err)
	})

	t.Run("cleans dirs", func(t *testing.T) {
		layout, err := NewLayout("/src/./tree", "/out//", "/logs")
		require.NoError(t, err)
		assert.Equal(t, m.Path("/src/tree"), layout.TopDir)
		assert.Equal(t, m.Path("/out"), layout.OutDir)
	})
}

func TestLayoutSrcDeSrc(t *testing.T) {
	layout := testLayout(t)

	t.Run("round trips logical ids", func(t *testing.T) {
		for _, id := range []m.LogicalID{"Android.bp", "bionic/libc/tzcode/asctime.c", "art"} {
			path, err := layout.Src(id)
			require.NoError(t, err)
			assert.True(t, layout.Under(path, layout.TopDir))

			back, err := layout.DeSrc(path)
			require.NoError(t, err)
			assert.Equal(t, id, back)
		}
	})

	t.Run("rejects escaping ids", func(t *testing.T) {
		_, err := layout.Src("../outside")
		assert.Error(t, err)
	})

	t.Run("rejects paths outside the tree", func(t *testing.T) {
		_, err := layout.DeSrc(m.Path(filepath.Join(string(layout.OutDir), "something")))
		assert.Error(t, err)
	})

	t.Run("must variant panics on escape", func(t *testing.T) {
		assert.Panics(t, func() { layout.MustSrc("../outside") })
	})
}

func TestLayoutWsCounterpart(t *testing.T) {
	layout := testLayout(t)

	src := layout.MustSrc("bionic/libc/SYNOPSIS.md")
	ws, err := layout.WsCounterpart(src)
	require.NoError(t, err)

	assert.Equal(t,
		m.Path(filepath.Join(string(layout.OutDir), "soong/workspace/bionic/libc/SYNOPSIS.md")), ws)
	assert.True(t, layout.Under(ws, layout.WorkspaceDir()))
}

func TestLayoutUnder(t *testing.T) {
	layout := testLayout(t)

	assert.True(t, layout.Under(layout.MustSrc("a/b"), layout.TopDir))
	assert.False(t, layout.Under(layout.TopDir, layout.TopDir))
	assert.False(t, layout.Under(layout.OutDir, layout.TopDir))
	assert.False(t, layout.Under(m.Path(string(layout.TopDir)+"-sibling"), layout.TopDir))
}
