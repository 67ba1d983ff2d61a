package recipes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "cujbench.dev/pkg/cujbench/internal/model"
)

func TestContentVerifiers(t *testing.T) {
	t.Run("skip under soong only", func(t *testing.T) {
		f := newRecipeFixture(t)
		f.buildType = m.BuildSoongOnly

		prover, disprover := f.factory.contentVerifiers("unread", "//marker\n")
		assert.ErrorIs(t, prover(), m.ErrVerificationSkipped)
		assert.ErrorIs(t, disprover(), m.ErrVerificationSkipped)
	})

	t.Run("prover wants the exact line present", func(t *testing.T) {
		f := newRecipeFixture(t)
		f.buildType = m.BuildMixedProd
		ws := f.wsFile(t, "pkg/"+GenBuildFile, "filegroup()\n//marker\n")

		prover, disprover := f.factory.contentVerifiers(ws, "//marker\n")
		assert.NoError(t, prover())
		assert.ErrorContains(t, disprover(), "not expected to contain")
	})

	t.Run("substring of a longer line does not count", func(t *testing.T) {
		f := newRecipeFixture(t)
		f.buildType = m.BuildMixedProd
		ws := f.wsFile(t, "pkg/"+GenBuildFile, "//marker and more\n")

		prover, disprover := f.factory.contentVerifiers(ws, "//marker\n")
		assert.ErrorContains(t, prover(), "expected to contain")
		assert.NoError(t, disprover())
	})

	t.Run("unreadable merged file is a hard failure", func(t *testing.T) {
		f := newRecipeFixture(t)
		f.buildType = m.BuildMixedProd

		prover, _ := f.factory.contentVerifiers(
			m.Path(filepath.Join(string(f.layout.WorkspaceDir()), "missing", GenBuildFile)), "//marker\n")
		err := prover()
		require.Error(t, err)
		assert.NotErrorIs(t, err, m.ErrVerificationSkipped)
	})
}

func TestModifyRevertKeptBuildFile(t *testing.T) {
	f := newRecipeFixture(t)
	f.buildType = m.BuildMixedProd

	buildFile := f.srcFile(t, "rules/python/"+LegacyBuildFile, "py_library(name = \"base\")\n")

	group, err := f.factory.ModifyRevertKeptBuildFile(buildFile)
	require.NoError(t, err)
	require.Len(t, group.Steps, 2)

	require.NoError(t, group.Steps[0].ApplyChange())
	marker := f.readSrc(t, "rules/python/"+LegacyBuildFile)[len("py_library(name = \"base\")\n"):]

	// Mimic the merge step keeping the modified content.
	f.wsFile(t, "rules/python/"+GenBuildFile, "py_library(name = \"base\")\n"+marker)
	assert.NoError(t, group.Steps[0].Verify())

	require.NoError(t, group.Steps[1].ApplyChange())
	assert.ErrorContains(t, group.Steps[1].Verify(), "not expected to contain")

	f.wsFile(t, "rules/python/"+GenBuildFile, "py_library(name = \"base\")\n")
	assert.NoError(t, group.Steps[1].Verify())
}

func TestCreateDeleteKeptBuildFile(t *testing.T) {
	t.Run("rejects the source-authored name", func(t *testing.T) {
		f := newRecipeFixture(t)
		require.NoError(t, os.MkdirAll(string(f.layout.MustSrc("kept")), 0o755))

		_, err := f.factory.CreateDeleteKeptBuildFile(f.layout.MustSrc("kept/" + SourceBuildFile))
		assert.ErrorContains(t, err, "illegal name")
	})

	t.Run("legacy name expects a symlink, merged name a real file", func(t *testing.T) {
		f := newRecipeFixture(t)
		require.NoError(t, os.MkdirAll(string(f.layout.MustSrc("kept")), 0o755))

		legacy, err := f.factory.CreateDeleteKeptBuildFile(f.layout.MustSrc("kept/" + LegacyBuildFile))
		require.NoError(t, err)
		merged, err := f.factory.CreateDeleteKeptBuildFile(f.layout.MustSrc("kept/" + GenBuildFile))
		require.NoError(t, err)

		require.NoError(t, legacy.Steps[0].ApplyChange())
		require.NoError(t, legacy.Steps[1].ApplyChange())
		require.NoError(t, merged.Steps[0].ApplyChange())
		require.NoError(t, merged.Steps[1].ApplyChange())
	})
}

func TestCreateDeleteUnkeptBuildFile(t *testing.T) {
	f := newRecipeFixture(t)
	f.buildType = m.BuildMixedProd
	require.NoError(t, os.MkdirAll(string(f.layout.MustSrc("libm")), 0o755))

	group, err := f.factory.CreateDeleteUnkeptBuildFile(f.layout.MustSrc("libm/" + LegacyBuildFile))
	require.NoError(t, err)

	require.NoError(t, group.Steps[0].ApplyChange())
	created := f.readSrc(t, "libm/"+LegacyBuildFile)

	file := f.layout.MustSrc("libm/" + LegacyBuildFile)
	f.linkIntoWorkspace(t, file)

	// Regeneration discards the injected content, so the merged build file
	// must omit it both after create and after delete.
	f.wsFile(t, "libm/"+GenBuildFile, "cc_library(name = \"libm\")\n")
	assert.NoError(t, group.Steps[0].Verify())

	f.wsFile(t, "libm/"+GenBuildFile, "cc_library(name = \"libm\")\n"+created)
	assert.ErrorContains(t, group.Steps[0].Verify(), "not expected to contain")
}
