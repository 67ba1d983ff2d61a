package adapter

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"time"

	m "cujbench.dev/pkg/cujbench/internal/model"
)

// BuildRunnerAdapter abstracts the incremental build invoked between
// scenario steps. The build itself is an external collaborator; this core
// only needs its exit status and output.
type BuildRunnerAdapter interface {
	// Build runs one incremental build in workDir and returns its combined
	// stdout/stderr output.
	Build(ctx context.Context, workDir m.Path) (string, error)
}

// LocalBuildRunnerAdapter runs a configured build command via os/exec.
type LocalBuildRunnerAdapter struct {
	argv    []string
	timeout time.Duration
}

// DefaultBuildTimeout bounds a single incremental build invocation.
const DefaultBuildTimeout = 4 * time.Hour

// NewLocalBuildRunnerAdapter constructs a LocalBuildRunnerAdapter for the
// given command line. An empty command makes Build a logged no-op, which is
// what catalog-only commands and dry runs use.
func NewLocalBuildRunnerAdapter(argv []string, timeout time.Duration) *LocalBuildRunnerAdapter {
	if timeout <= 0 {
		timeout = DefaultBuildTimeout
	}

	return &LocalBuildRunnerAdapter{argv: argv, timeout: timeout}
}

// Build runs the configured build command in workDir.
func (a *LocalBuildRunnerAdapter) Build(ctx context.Context, workDir m.Path) (string, error) {
	if len(a.argv) == 0 {
		slog.Debug("no build command configured, skipping build")
		return "", nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	// #nosec G204 - the build command comes from the operator's config
	cmd := exec.CommandContext(ctx, a.argv[0], a.argv[1:]...)
	cmd.Dir = string(workDir)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	return stdout.String() + stderr.String(), err
}
