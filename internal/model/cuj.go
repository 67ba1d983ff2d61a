// Package model defines the data structures for build-scenario benchmarking.
package model

import (
	"errors"
	"fmt"
)

// Action is a zero-argument effect: either a filesystem mutation or a
// post-condition verification.
type Action func() error

// Step is an atomic, named unit of change within a scenario.
//
// ApplyChange mutates exactly one filesystem location. Verify inspects
// observable state (workspace symlink structure, file contents) after the
// change and the subsequent build; a nil Verify means no verification.
type Step struct {
	Verb        string
	ApplyChange Action
	Verify      Action
}

// Group is an ordered sequence of Steps sharing one logical scenario.
//
// A well-formed Group's Steps, applied in order, return the tracked subtree
// to its original state so scenarios can run repeatedly without operator
// intervention. Description may be empty for infrastructure-only groups
// such as "clean" or "warmup".
type Group struct {
	Description string
	Steps       []Step
}

// BuildType is the configuration mode the scenario runner operates under.
type BuildType string

// The closed set of build types.
const (
	// BuildSoongOnly exercises only the primary build-definition interpreter.
	BuildSoongOnly BuildType = "soong_only"
	// BuildMixedProd exercises the bridged interpretation path with the
	// production release config.
	BuildMixedProd BuildType = "mixed_prod"
	// BuildMixedStaging exercises the bridged interpretation path with the
	// staging release config.
	BuildMixedStaging BuildType = "mixed_staging"
)

// BuildTypes lists all valid build types in a stable order.
func BuildTypes() []BuildType {
	return []BuildType{BuildSoongOnly, BuildMixedProd, BuildMixedStaging}
}

// ParseBuildType converts a config/flag value into a BuildType.
func ParseBuildType(value string) (BuildType, error) {
	for _, bt := range BuildTypes() {
		if value == string(bt) {
			return bt, nil
		}
	}

	return "", fmt.Errorf("unknown build type %q (valid: %v)", value, BuildTypes())
}

// Relation describes how a source path is expected to appear in the derived
// workspace (the symlink forest generated by the build tool under test).
type Relation int

// The closed set of workspace relationships.
const (
	// Symlink expects the mirrored workspace path to be a symbolic link
	// into the source tree.
	Symlink Relation = iota
	// UnderSymlink expects the path to be reachable through an ancestor
	// directory that is itself a symlink into the source tree.
	UnderSymlink
	// NotUnderSymlink expects a real (non-symlink) workspace entry with no
	// symlinked ancestor.
	NotUnderSymlink
	// Omission expects the workspace path to not exist at all.
	Omission
)

func (r Relation) String() string {
	switch r {
	case Symlink:
		return "symlink"
	case UnderSymlink:
		return "under_symlink"
	case NotUnderSymlink:
		return "not_under_symlink"
	case Omission:
		return "omission"
	}

	return fmt.Sprintf("relation(%d)", int(r))
}

// ErrVerificationSkipped marks a verification that was intentionally not
// performed under the active build type. It is distinct from both a pass and
// a failure; the runner records it as StatusSkipped.
var ErrVerificationSkipped = errors.New("verification skipped for build type")
