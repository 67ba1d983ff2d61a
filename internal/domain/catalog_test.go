package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cujbench.dev/pkg/cujbench/internal/adapter"
	"cujbench.dev/pkg/cujbench/internal/domain/cuj"
	"cujbench.dev/pkg/cujbench/internal/domain/recipes"
	m "cujbench.dev/pkg/cujbench/internal/model"
)

// catalogFixture materializes the minimal source tree the catalog's
// structural preconditions expect.
func catalogFixture(t *testing.T) *cuj.Layout {
	t.Helper()

	root := t.TempDir()
	layout, err := cuj.NewLayout(
		m.Path(filepath.Join(root, "src")),
		m.Path(filepath.Join(root, "out")),
		m.Path(filepath.Join(root, "logs")),
	)
	require.NoError(t, err)

	files := map[string]string{
		"Android.bp": `filegroup { name: "top", srcs: ["README.md"] }` + "\n",

		"art/Android.bp": `cc_library {
    name: "libart",
    srcs: ["runtime/foo.cc"],
}

genrule {
    name: "art_gen",
    cmd: "true",
}
`,
		"art/runtime/foo.cc": "int art;\n",

		"bionic/docs/guide/intro.md":     "docs\n",
		"bionic/libm/Android.bp":         `cc_library { name: "libm", srcs: ["e.c"] }` + "\n",
		"bionic/libc/tzcode/asctime.c":   "char *asctime;\n",
		"bionic/libc/stdio/stdio.cpp":    "int stdio;\n",
		"bionic/libc/version_script.txt": "LIBC { };\n",

		"packages/modules/adb/Android.bp":                    `cc_binary { name: "adbd", srcs: ["daemon/main.cpp"] }` + "\n",
		"packages/modules/adb/daemon/main.cpp":               "int main() {}\n",
		"packages/modules/NeuralNetworks/runtime/Android.bp": `cc_library_shared { name: "libneuralnetworks" }` + "\n",

		"frameworks/base/core/java/android/view/View.java":         "class View {}\n",
		"frameworks/base/core/java/android/provider/Settings.java": "class Settings {\nprivate static boolean f() {\n}\n}\n",
		"frameworks/base/services/core/java/com/android/server/am/ActivityManagerService.java": "class ActivityManagerService {\nprivate static boolean g() {\n}\n}\n",
		"frameworks/base/core/res/res/values/config.xml": "<resources>\n    <integer name=\"level\">0</integer>\n</resources>\n",

		"build/bazel/compliance/Android.bp": `filegroup { name: "compliance" }` + "\n",
		"build/bazel/rules/python/BUILD":    "py_library(name = \"base\")\n",

		"external/cbor-java/AndroidManifest.xml": "<manifest/>\n",
	}

	for file, content := range files {
		path := filepath.Join(string(layout.TopDir), file)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	// A leaf directory with no packages above or below it.
	require.NoError(t, os.MkdirAll(filepath.Join(string(layout.TopDir), "bionic/build"), 0o755))

	return layout
}

func newTestCatalog(layout *cuj.Layout) Catalog {
	fs := adapter.NewLocalTreeFSAdapter()
	factory := recipes.NewFactory(fs, layout, func() m.BuildType { return m.BuildSoongOnly })

	return NewCatalog(fs, adapter.NewLocalFinder(), adapter.NewLocalCloner(fs), layout, factory)
}

func TestCatalogGroups(t *testing.T) {
	layout := catalogFixture(t)
	catalog := newTestCatalog(layout)

	groups, err := catalog.Groups()
	require.NoError(t, err)
	require.Len(t, groups, 41)

	// Infrastructure groups come first and carry no description.
	assert.Empty(t, groups[0].Description)
	assert.Equal(t, "clean", groups[0].Steps[0].Verb)
	assert.Empty(t, groups[1].Description)
	assert.Equal(t, "no change", groups[1].Steps[0].Verb)

	descriptions := make([]string, 0, len(groups))
	for _, group := range groups {
		descriptions = append(descriptions, group.Description)
	}

	assert.Contains(t, descriptions, "clone 1 genrules")
	assert.Contains(t, descriptions, "clone 4 cc_")
	assert.Contains(t, descriptions, "clone 1 adbd")
	assert.Contains(t, descriptions, "clone 1 libNN")
	assert.Contains(t, descriptions, "clone 2 adbd&libNN")
	assert.Contains(t, descriptions, "bionic/libc/tzcode/globbed.c")
	assert.Contains(t, descriptions, "bionic/libc/version_script.txt")
	assert.Contains(t, descriptions, "external/cbor-java/AndroidManifest.xml")
	assert.Contains(t, descriptions, "bionic/unreferenced.txt")
	assert.Contains(t, descriptions, "art/unreferenced.txt")
	assert.Contains(t, descriptions, "frameworks/base/core/java/android/provider/Settings.java")
	assert.Contains(t, descriptions, "Android.bp")
	assert.Contains(t, descriptions, "bionic/libm/BUILD")
	assert.Contains(t, descriptions, "build/bazel/compliance/BUILD.bazel")
	assert.Contains(t, descriptions, "art/bogus.txt")
}

func TestCatalogGroupsAreCached(t *testing.T) {
	layout := catalogFixture(t)
	catalog := newTestCatalog(layout)

	first, err := catalog.Groups()
	require.NoError(t, err)

	second, err := catalog.Groups()
	require.NoError(t, err)
	assert.Equal(t, len(first), len(second))
}

func TestCatalogFailsOnDriftedTree(t *testing.T) {
	t.Run("package dir without a build file", func(t *testing.T) {
		layout := catalogFixture(t)
		require.NoError(t, os.Remove(filepath.Join(string(layout.TopDir), "art/Android.bp")))

		_, err := newTestCatalog(layout).Groups()
		require.Error(t, err)
		assert.ErrorContains(t, err, "no match")
	})

	t.Run("generated build file where none is expected", func(t *testing.T) {
		layout := catalogFixture(t)
		require.NoError(t, os.WriteFile(
			filepath.Join(string(layout.TopDir), "art/BUILD.bazel"), []byte("x\n"), 0o644))

		_, err := newTestCatalog(layout).Groups()
		require.Error(t, err)
		assert.ErrorContains(t, err, "unexpected match")
	})

	t.Run("missing clone target", func(t *testing.T) {
		layout := catalogFixture(t)
		adb := filepath.Join(string(layout.TopDir), "packages/modules/adb/Android.bp")
		require.NoError(t, os.WriteFile(adb, []byte(`cc_binary { name: "renamed" }`+"\n"), 0o644))

		_, err := newTestCatalog(layout).Groups()
		require.Error(t, err)
		assert.ErrorContains(t, err, "no modules matched")
	})
}

func TestCatalogCleanGroup(t *testing.T) {
	t.Run("removes the out dir", func(t *testing.T) {
		layout := catalogFixture(t)
		require.NoError(t, os.MkdirAll(string(layout.WorkspaceDir()), 0o755))

		groups, err := newTestCatalog(layout).Groups()
		require.NoError(t, err)

		require.NoError(t, groups[0].Steps[0].ApplyChange())
		assert.NoDirExists(t, string(layout.OutDir))
	})

	t.Run("refuses a log dir inside the source tree", func(t *testing.T) {
		root := t.TempDir()
		layout, err := cuj.NewLayout(
			m.Path(filepath.Join(root, "src")),
			m.Path(filepath.Join(root, "out")),
			m.Path(filepath.Join(root, "src", "logs")),
		)
		require.NoError(t, err)

		fs := adapter.NewLocalTreeFSAdapter()
		factory := recipes.NewFactory(fs, layout, func() m.BuildType { return m.BuildSoongOnly })
		c := &catalog{
			fs:      fs,
			finder:  adapter.NewLocalFinder(),
			cloner:  adapter.NewLocalCloner(fs),
			layout:  layout,
			recipes: factory,
		}

		clean := c.cleanGroup()
		assert.ErrorContains(t, clean.Steps[0].ApplyChange(), "inside the source tree")
	})
}
