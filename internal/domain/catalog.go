// Package domain contains the scenario catalog, the per-group runner, and
// the workflows behind the CLI commands.
package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"cujbench.dev/pkg/cujbench/internal/adapter"
	"cujbench.dev/pkg/cujbench/internal/domain/cuj"
	"cujbench.dev/pkg/cujbench/internal/domain/recipes"
	m "cujbench.dev/pkg/cujbench/internal/model"
)

// Catalog assembles the full ordered scenario list. Assembly runs once per
// process; a structural precondition failure aborts the whole catalog, no
// partial list is ever returned.
type Catalog interface {
	Groups() ([]m.Group, error)
}

type catalog struct {
	once   sync.Once
	groups []m.Group
	err    error

	fs      adapter.TreeFSAdapter
	finder  adapter.Finder
	cloner  adapter.Cloner
	layout  *cuj.Layout
	recipes *recipes.Factory
}

// NewCatalog wires a catalog over the given collaborators.
func NewCatalog(
	fs adapter.TreeFSAdapter,
	finder adapter.Finder,
	cloner adapter.Cloner,
	layout *cuj.Layout,
	factory *recipes.Factory,
) Catalog {
	return &catalog{
		fs:      fs,
		finder:  finder,
		cloner:  cloner,
		layout:  layout,
		recipes: factory,
	}
}

func (c *catalog) Groups() ([]m.Group, error) {
	c.once.Do(func() {
		c.groups, c.err = c.assemble()
	})

	return c.groups, c.err
}

// groupList accumulates recipe results, keeping only the first error so
// assembly reads linearly.
type groupList struct {
	groups []m.Group
	err    error
}

func (gl *groupList) add(group m.Group, err error) {
	if gl.err != nil {
		return
	}

	if err != nil {
		gl.err = err
		return
	}

	gl.groups = append(gl.groups, group)
}

func (gl *groupList) addAll(groups []m.Group, err error) {
	if gl.err != nil {
		return
	}

	if err != nil {
		gl.err = err
		return
	}

	gl.groups = append(gl.groups, groups...)
}

func (c *catalog) assemble() ([]m.Group, error) {
	// Example directories are chosen for their structure, confirmed here so
	// source-tree drift fails loudly instead of silently testing the wrong
	// thing. Package dirs carry a source build file but no generated ones,
	// because for those we cannot tell whether existing build files would
	// be kept.
	const nonEmptyDir = "*/*"

	pkg := c.layout.MustSrc("art")
	if err := c.finder.Confirm(pkg, nonEmptyDir, recipes.SourceBuildFile, "!BUILD*"); err != nil {
		return nil, err
	}

	pkgFree := c.layout.MustSrc("bionic/docs")
	if err := c.finder.Confirm(pkgFree, nonEmptyDir, "!**/"+recipes.SourceBuildFile, "!**/BUILD*"); err != nil {
		return nil, err
	}

	ancestor := c.layout.MustSrc("bionic")
	if err := c.finder.Confirm(ancestor, "**/"+recipes.SourceBuildFile, "!"+recipes.SourceBuildFile, "!BUILD*"); err != nil {
		return nil, err
	}

	leafPkgFree := c.layout.MustSrc("bionic/build")
	if err := c.finder.Confirm(leafPkgFree, "!"+nonEmptyDir, "!**/"+recipes.SourceBuildFile, "!**/BUILD*"); err != nil {
		return nil, err
	}

	var list groupList

	list.add(c.cleanGroup(), nil)
	list.add(c.warmupGroup(), nil)

	list.addAll(c.cloningGroups())

	globbed := c.layout.MustSrc("bionic/libc/tzcode/globbed.c")
	list.add(c.recipes.CreateDelete(globbed, m.UnderSymlink, ""))

	for _, id := range []m.LogicalID{
		"bionic/libc/version_script.txt",
		"external/cbor-java/AndroidManifest.xml",
	} {
		list.add(c.recipes.DeleteRestore(c.layout.MustSrc(id), m.Symlink))
	}

	list.addAll(c.unreferencedFileGroups(pkg, ancestor, pkgFree, leafPkgFree))
	list.addAll(c.mixedBuildLaunchGroups())
	list.addAll(c.buildFileGroups(ancestor, pkgFree, leafPkgFree))
	list.addAll(c.unkeptBuildGroups())
	list.addAll(c.keptBuildGroups())

	list.add(c.recipes.ReplaceFileWithDir(m.Path(filepath.Join(string(pkg), "bogus.txt"))))

	return list.groups, list.err
}

// cleanGroup removes the build output tree after checking that the
// configured log dir does not live inside the source tree.
func (c *catalog) cleanGroup() m.Group {
	clean := func() error {
		if c.layout.Under(c.layout.LogDir, c.layout.TopDir) || c.layout.LogDir == c.layout.TopDir {
			return fmt.Errorf("log dir %s is inside the source tree, specify a different one", c.layout.LogDir)
		}

		if c.fs.Exists(c.layout.OutDir) {
			return c.fs.RemoveAll(c.layout.OutDir)
		}

		return nil
	}

	return m.Group{Steps: []m.Step{{Verb: "clean", ApplyChange: clean}}}
}

// warmupGroup is a no-change scenario so runs can measure a null build.
func (c *catalog) warmupGroup() m.Group {
	return m.Group{Steps: []m.Step{{Verb: "no change", ApplyChange: func() error { return nil }}}}
}

func (c *catalog) cloningGroups() ([]m.Group, error) {
	cc := func(moduleType, name string) bool {
		return strings.HasPrefix(moduleType, "cc_") &&
			!strings.Contains(moduleType, "test") &&
			// libcrypto variants carry a unique hash
			!strings.HasPrefix(name, "libcrypto")
	}
	libNN := func(moduleType, name string) bool {
		return moduleType == "cc_library_shared" && name == "libneuralnetworks"
	}

	top := c.layout.MustSrc(".")
	adbBuildFile := c.layout.MustSrc("packages/modules/adb/" + recipes.SourceBuildFile)
	nnBuildFile := c.layout.MustSrc("packages/modules/NeuralNetworks/runtime/" + recipes.SourceBuildFile)

	var list groupList

	list.add(c.cloner.GetGroup(map[m.Path]adapter.ModulePredicate{top: adapter.TypeIn("genrule")}, "genrules"))
	list.add(c.cloner.GetGroup(map[m.Path]adapter.ModulePredicate{top: cc}, "cc_"))
	list.add(c.cloner.GetGroup(map[m.Path]adapter.ModulePredicate{adbBuildFile: adapter.NameIn("adbd")}, "adbd"))
	list.add(c.cloner.GetGroup(map[m.Path]adapter.ModulePredicate{nnBuildFile: libNN}, "libNN"))
	list.add(c.cloner.GetGroup(map[m.Path]adapter.ModulePredicate{
		adbBuildFile: adapter.NameIn("adbd"),
		nnBuildFile:  libNN,
	}, "adbd&libNN"))

	return list.groups, list.err
}

func (c *catalog) unreferencedFileGroups(pkg, ancestor, pkgFree, leafPkgFree m.Path) ([]m.Group, error) {
	var list groupList

	for _, dir := range []m.Path{ancestor, pkg} {
		list.add(c.recipes.CreateDelete(m.Path(filepath.Join(string(dir), "unreferenced.txt")), m.Symlink, ""))
	}

	for _, dir := range []m.Path{pkgFree, leafPkgFree} {
		list.add(c.recipes.CreateDelete(m.Path(filepath.Join(string(dir), "unreferenced.txt")), m.UnderSymlink, ""))
	}

	return list.groups, list.err
}

// mixedBuildLaunchGroups edits sources across languages so both
// build-definition interpreters are exercised in mixed mode.
func (c *catalog) mixedBuildLaunchGroups() ([]m.Group, error) {
	var list groupList

	for _, id := range []m.LogicalID{
		"bionic/libc/tzcode/asctime.c",
		"bionic/libc/stdio/stdio.cpp",
		"packages/modules/adb/daemon/main.cpp",
		"frameworks/base/core/java/android/view/View.java",
		"frameworks/base/core/java/android/provider/Settings.java",
	} {
		list.add(c.recipes.ModifyRevert(c.layout.MustSrc(id), ""))
	}

	for _, id := range []m.LogicalID{
		"frameworks/base/core/java/android/provider/Settings.java",
		"frameworks/base/services/core/java/com/android/server/am/ActivityManagerService.java",
	} {
		file := c.layout.MustSrc(id)
		list.add(c.recipes.ModifyPrivateMethod(file))
		list.add(c.recipes.AddPrivateField(file))
		list.add(c.recipes.AddPublicAPI(file))
	}

	resources := c.layout.MustSrc("frameworks/base/core/res/res/values/config.xml")
	list.add(c.recipes.ModifyResource(resources))
	list.add(c.recipes.AddResource(resources))

	return list.groups, list.err
}

func (c *catalog) buildFileGroups(ancestor, pkgFree, leafPkgFree m.Path) ([]m.Group, error) {
	var list groupList

	list.add(c.recipes.ModifyRevert(c.layout.MustSrc(recipes.SourceBuildFile), ""))

	for _, dir := range []m.Path{ancestor, pkgFree, leafPkgFree} {
		list.add(c.recipes.CreateDeleteBuildFile(m.Path(filepath.Join(string(dir), recipes.SourceBuildFile))))
	}

	return list.groups, list.err
}

// keptBuildGroups covers a subtree where manually authored build files are
// kept across regeneration.
func (c *catalog) keptBuildGroups() ([]m.Group, error) {
	kept := c.layout.MustSrc("build/bazel")

	if err := c.finder.Confirm(
		kept,
		"compliance/"+recipes.SourceBuildFile,
		"!compliance/"+recipes.LegacyBuildFile,
		"!compliance/"+recipes.GenBuildFile,
		"rules/python/"+recipes.LegacyBuildFile,
	); err != nil {
		return nil, err
	}

	var list groupList

	for _, name := range []string{recipes.LegacyBuildFile, recipes.GenBuildFile} {
		list.add(c.recipes.CreateDeleteKeptBuildFile(m.Path(filepath.Join(string(kept), "compliance", name))))
	}

	list.add(c.recipes.CreateDelete(m.Path(filepath.Join(string(kept), recipes.LegacyBuildFile, "kept-dir")), m.Symlink, ""))
	list.add(c.recipes.ModifyRevertKeptBuildFile(m.Path(filepath.Join(string(kept), "rules/python", recipes.LegacyBuildFile))))

	return list.groups, list.err
}

// unkeptBuildGroups covers a subtree where build files are fully
// regenerated.
func (c *catalog) unkeptBuildGroups() ([]m.Group, error) {
	unkept := c.layout.MustSrc("bionic/libm")

	if err := c.finder.Confirm(
		unkept,
		recipes.SourceBuildFile,
		"!"+recipes.LegacyBuildFile,
		"!"+recipes.GenBuildFile,
	); err != nil {
		return nil, err
	}

	var list groupList

	for _, name := range []string{recipes.LegacyBuildFile, recipes.GenBuildFile} {
		list.add(c.recipes.CreateDeleteUnkeptBuildFile(m.Path(filepath.Join(string(unkept), name))))
	}

	for _, name := range []string{recipes.LegacyBuildFile, recipes.GenBuildFile} {
		list.add(c.recipes.CreateDelete(m.Path(filepath.Join(string(unkept), "bogus-unkept", name)), m.Omission, ""))
	}

	list.add(c.recipes.CreateDelete(m.Path(filepath.Join(string(unkept), recipes.LegacyBuildFile, "unkept-dir")), m.Symlink, ""))

	return list.groups, list.err
}
