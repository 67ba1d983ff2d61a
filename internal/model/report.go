package model

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// StepStatus represents the outcome of one executed scenario step.
type StepStatus int

const (
	// StatusPassed indicates the mutation applied and its verification held.
	StatusPassed StepStatus = iota
	// StatusFailed indicates a verification failure attributable to the step.
	StatusFailed
	// StatusSkipped indicates the verification was intentionally skipped
	// under the active build type.
	StatusSkipped
	// StatusError indicates the mutation or the intervening build errored.
	StatusError
)

func (s StepStatus) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	case StatusError:
		return "error"
	}

	return "unknown"
}

// MarshalYAML encodes the status as its string label.
func (s StepStatus) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML decodes a status from its string label.
func (s *StepStatus) UnmarshalYAML(value *yaml.Node) error {
	var label string
	if err := value.Decode(&label); err != nil {
		return err
	}

	for _, status := range []StepStatus{StatusPassed, StatusFailed, StatusSkipped, StatusError} {
		if label == status.String() {
			*s = status
			return nil
		}
	}

	return fmt.Errorf("unknown step status %q", label)
}

// StepResult records the outcome of one step of one scenario group.
type StepResult struct {
	Group    string        `yaml:"group"`
	Verb     string        `yaml:"verb"`
	Status   StepStatus    `yaml:"status"`
	Detail   string        `yaml:"detail,omitempty"`
	Duration time.Duration `yaml:"duration"`
}

// RunReport is the persisted outcome of one scenario run.
type RunReport struct {
	BuildType BuildType    `yaml:"build_type"`
	StartedAt time.Time    `yaml:"started_at"`
	Results   []StepResult `yaml:"results"`
}

// Counts tallies results by status.
func (r RunReport) Counts() (passed, failed, skipped, errored int) {
	for _, result := range r.Results {
		switch result.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		case StatusError:
			errored++
		}
	}

	return passed, failed, skipped, errored
}
