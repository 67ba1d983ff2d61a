package adapter

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	m "cujbench.dev/pkg/cujbench/internal/model"
)

// reportFileName is the on-disk name of a persisted run report.
const reportFileName = "cuj_report.yaml"

// ResultStore persists and loads scenario run reports.
type ResultStore interface {
	SaveReport(dir m.Path, report m.RunReport) error
	LoadReport(dir m.Path) (m.RunReport, error)

	// LoadSubReports loads the reports found in immediate subdirectories of
	// dir, for merging reports produced on separate machines or runs.
	LoadSubReports(dir m.Path) ([]m.RunReport, error)
}

// LocalResultStore stores reports as YAML files.
type LocalResultStore struct{}

// NewLocalResultStore constructs a LocalResultStore.
func NewLocalResultStore() *LocalResultStore {
	return &LocalResultStore{}
}

// SaveReport writes the report into dir, creating it if needed.
func (s *LocalResultStore) SaveReport(dir m.Path, report m.RunReport) error {
	if err := os.MkdirAll(string(dir), 0o750); err != nil {
		return fmt.Errorf("cannot create report dir %s: %w", dir, err)
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("cannot encode report: %w", err)
	}

	return os.WriteFile(filepath.Join(string(dir), reportFileName), data, 0o644)
}

// LoadReport reads the report stored in dir.
func (s *LocalResultStore) LoadReport(dir m.Path) (m.RunReport, error) {
	data, err := os.ReadFile(filepath.Join(string(dir), reportFileName))
	if err != nil {
		return m.RunReport{}, fmt.Errorf("cannot read report in %s: %w", dir, err)
	}

	var report m.RunReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return m.RunReport{}, fmt.Errorf("cannot decode report in %s: %w", dir, err)
	}

	return report, nil
}

// LoadSubReports loads every report found one level below dir.
func (s *LocalResultStore) LoadSubReports(dir m.Path) ([]m.RunReport, error) {
	entries, err := os.ReadDir(string(dir))
	if err != nil {
		return nil, fmt.Errorf("cannot list %s: %w", dir, err)
	}

	var reports []m.RunReport

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		subdir := m.Path(filepath.Join(string(dir), entry.Name()))
		if _, statErr := os.Stat(filepath.Join(string(subdir), reportFileName)); statErr != nil {
			continue
		}

		report, loadErr := s.LoadReport(subdir)
		if loadErr != nil {
			return nil, loadErr
		}

		reports = append(reports, report)
	}

	return reports, nil
}
