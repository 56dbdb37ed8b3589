package types

import "fmt"

// Priority of a ticket. Empty means unset.
type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid checks if the priority is valid. The empty priority is valid.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

func (p Priority) String() string {
	return string(p)
}

// ParsePriority parses a string into a Priority
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority: %s", s)
	}
	return p, nil
}

// Effort estimated for producing a content item
type Effort string

const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

// AllEfforts returns all valid efforts
func AllEfforts() []Effort {
	return []Effort{EffortLow, EffortMedium, EffortHigh}
}

// IsValid checks if the effort is valid
func (e Effort) IsValid() bool {
	switch e {
	case EffortLow, EffortMedium, EffortHigh:
		return true
	default:
		return false
	}
}

func (e Effort) String() string {
	return string(e)
}

// ParseEffort parses a string into an Effort
func ParseEffort(s string) (Effort, error) {
	e := Effort(s)
	if !e.IsValid() {
		return "", fmt.Errorf("invalid effort: %s", s)
	}
	return e, nil
}
