// Package adapter contains filesystem, build, and persistence adapters for
// the cujbench CLI.
package adapter

import (
	"fmt"
	"os"
	"path/filepath"

	m "cujbench.dev/pkg/cujbench/internal/model"
)

// TreeFSAdapter abstracts the filesystem operations scenario recipes rely on
// when mutating the tracked source tree and inspecting the derived
// workspace. It hides direct `os` access so recipes and verifiers can be
// tested against temp trees without touching global state.
//
//nolint:interfacebloat // A richer interface keeps recipe logic decoupled from os/fs.
type TreeFSAdapter interface {
	// Exists reports whether something exists at path (symlinks count even
	// when dangling).
	Exists(path m.Path) bool

	// Lstat returns metadata for path without following symlinks.
	Lstat(path m.Path) (os.FileInfo, error)

	// Readlink returns the target of a symbolic link.
	Readlink(path m.Path) (m.Path, error)

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// WriteFile writes content to a file, creating or truncating it.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error

	// CreateFile writes content to a new file, failing if it already exists.
	CreateFile(path m.Path, content []byte) error

	// AppendFile appends content to an existing file.
	AppendFile(path m.Path, content []byte) error

	// TruncateBy shortens the file at path by n trailing bytes.
	TruncateBy(path m.Path, n int64) error

	// Rename moves a file or directory.
	Rename(oldPath, newPath m.Path) error

	// MkdirAll creates a directory along with any missing parents.
	MkdirAll(path m.Path, perm os.FileMode) error

	// Remove deletes a single file or empty directory.
	Remove(path m.Path) error

	// RemoveAll deletes a directory and all its contents.
	RemoveAll(path m.Path) error

	// TempDir returns the system temp directory.
	TempDir() m.Path
}

// LocalTreeFSAdapter is the os-backed implementation of TreeFSAdapter.
type LocalTreeFSAdapter struct{}

// NewLocalTreeFSAdapter constructs a LocalTreeFSAdapter ready to be wired
// into the recipe factory and catalog.
func NewLocalTreeFSAdapter() *LocalTreeFSAdapter {
	return &LocalTreeFSAdapter{}
}

// Exists reports whether something exists at path.
func (a *LocalTreeFSAdapter) Exists(path m.Path) bool {
	_, err := os.Lstat(string(path))
	return err == nil
}

// Lstat returns metadata for path without following symlinks.
func (a *LocalTreeFSAdapter) Lstat(path m.Path) (os.FileInfo, error) {
	return os.Lstat(string(path))
}

// Readlink returns the target of a symbolic link.
func (a *LocalTreeFSAdapter) Readlink(path m.Path) (m.Path, error) {
	target, err := os.Readlink(string(path))
	if err != nil {
		return "", err
	}

	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(string(path)), target)
	}

	return m.Path(filepath.Clean(target)), nil
}

// ReadFile loads file contents from disk.
func (a *LocalTreeFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// WriteFile writes content to a file with default permissions.
func (a *LocalTreeFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	return os.WriteFile(string(path), content, perm)
}

// CreateFile writes content to a new file, failing if it already exists.
func (a *LocalTreeFSAdapter) CreateFile(path m.Path, content []byte) error {
	// #nosec G304 - path comes from the catalog, not user input
	f, err := os.OpenFile(string(path), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// AppendFile appends content to an existing file.
func (a *LocalTreeFSAdapter) AppendFile(path m.Path, content []byte) error {
	// #nosec G304 - path comes from the catalog, not user input
	f, err := os.OpenFile(string(path), os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// TruncateBy shortens the file at path by n trailing bytes.
func (a *LocalTreeFSAdapter) TruncateBy(path m.Path, n int64) error {
	info, err := os.Stat(string(path))
	if err != nil {
		return err
	}

	if info.Size() < n {
		return fmt.Errorf("cannot truncate %q by %d bytes, file has only %d", path, n, info.Size())
	}

	return os.Truncate(string(path), info.Size()-n)
}

// Rename moves a file or directory.
func (a *LocalTreeFSAdapter) Rename(oldPath, newPath m.Path) error {
	return os.Rename(string(oldPath), string(newPath))
}

// MkdirAll creates a directory along with any missing parents.
func (a *LocalTreeFSAdapter) MkdirAll(path m.Path, perm os.FileMode) error {
	return os.MkdirAll(string(path), perm)
}

// Remove deletes a single file or empty directory.
func (a *LocalTreeFSAdapter) Remove(path m.Path) error {
	return os.Remove(string(path))
}

// RemoveAll deletes a directory and all its contents.
func (a *LocalTreeFSAdapter) RemoveAll(path m.Path) error {
	return os.RemoveAll(string(path))
}

// TempDir returns the system temp directory.
func (a *LocalTreeFSAdapter) TempDir() m.Path {
	return m.Path(os.TempDir())
}
