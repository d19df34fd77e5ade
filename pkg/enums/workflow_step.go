package enums

import "fmt"

// WorkflowStep is an observational marker on a delivery. Steps stamp a
// timestamp and may be repeated to correct an earlier report; they are not
// terminal outcomes.
type WorkflowStep string

const (
	WorkflowStepArrived          WorkflowStep = "arrived"
	WorkflowStepUnloadingStarted WorkflowStep = "unloading_started"
	WorkflowStepUnloadingEnded   WorkflowStep = "unloading_ended"
)

var validWorkflowSteps = []WorkflowStep{
	WorkflowStepArrived,
	WorkflowStepUnloadingStarted,
	WorkflowStepUnloadingEnded,
}

// String implements fmt.Stringer.
func (w WorkflowStep) String() string {
	return string(w)
}

// IsValid reports whether the value is a known WorkflowStep.
func (w WorkflowStep) IsValid() bool {
	for _, candidate := range validWorkflowSteps {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseWorkflowStep converts raw input into a WorkflowStep.
func ParseWorkflowStep(value string) (WorkflowStep, error) {
	for _, candidate := range validWorkflowSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid workflow step %q", value)
}
