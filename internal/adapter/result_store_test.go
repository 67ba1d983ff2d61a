package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "cujbench.dev/pkg/cujbench/internal/model"
)

func sampleReport(group string) m.RunReport {
	return m.RunReport{
		BuildType: m.BuildSoongOnly,
		StartedAt: time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC),
		Results: []m.StepResult{
			{Group: group, Verb: "modify", Status: m.StatusPassed, Duration: time.Second},
			{Group: group, Verb: "revert", Status: m.StatusFailed, Detail: "mismatch"},
		},
	}
}

func TestLocalResultStore_SaveLoad(t *testing.T) {
	store := NewLocalResultStore()
	dir := m.Path(filepath.Join(t.TempDir(), "reports"))

	report := sampleReport("bionic/libc")
	require.NoError(t, store.SaveReport(dir, report))

	loaded, err := store.LoadReport(dir)
	require.NoError(t, err)
	assert.Equal(t, report.BuildType, loaded.BuildType)
	assert.True(t, report.StartedAt.Equal(loaded.StartedAt))
	assert.Equal(t, report.Results, loaded.Results)
}

func TestLocalResultStore_LoadMissing(t *testing.T) {
	store := NewLocalResultStore()

	_, err := store.LoadReport(m.Path(filepath.Join(t.TempDir(), "empty")))
	assert.Error(t, err)
}

func TestLocalResultStore_LoadSubReports(t *testing.T) {
	store := NewLocalResultStore()
	dir := t.TempDir()

	require.NoError(t, store.SaveReport(m.Path(filepath.Join(dir, "shard_0")), sampleReport("art")))
	require.NoError(t, store.SaveReport(m.Path(filepath.Join(dir, "shard_1")), sampleReport("bionic")))

	// Subdirectories without a report and stray files are skipped.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "no-report-here"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	reports, err := store.LoadSubReports(m.Path(dir))
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}
