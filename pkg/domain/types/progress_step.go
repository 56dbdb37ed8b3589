package types

import "fmt"

// ProgressStep is one entry of the ordered production checklist of a content
// item: idea, script, recording, edit, ready.
type ProgressStep string

const (
	ProgressStepIdea      ProgressStep = "has_idea"
	ProgressStepScript    ProgressStep = "has_script"
	ProgressStepRecording ProgressStep = "has_recording"
	ProgressStepEdit      ProgressStep = "has_edit"
	ProgressStepReady     ProgressStep = "is_ready"
)

// AllProgressSteps returns the checklist in order
func AllProgressSteps() []ProgressStep {
	return []ProgressStep{
		ProgressStepIdea,
		ProgressStepScript,
		ProgressStepRecording,
		ProgressStepEdit,
		ProgressStepReady,
	}
}

// Index returns the position of the step in the checklist, or -1
func (s ProgressStep) Index() int {
	for i, v := range AllProgressSteps() {
		if v == s {
			return i
		}
	}
	return -1
}

// IsValid checks if the progress step is valid
func (s ProgressStep) IsValid() bool {
	return s.Index() >= 0
}

func (s ProgressStep) String() string {
	return string(s)
}

// ParseProgressStep parses a string into a ProgressStep
func ParseProgressStep(s string) (ProgressStep, error) {
	step := ProgressStep(s)
	if !step.IsValid() {
		return "", fmt.Errorf("invalid progress step: %s", s)
	}
	return step, nil
}
