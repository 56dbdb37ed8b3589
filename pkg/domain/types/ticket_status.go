package types

import "fmt"

// TicketStatus is the kanban column a ticket sits in. Columns are ordered.
type TicketStatus string

const (
	TicketStatusBacklog    TicketStatus = "backlog"
	TicketStatusNext       TicketStatus = "next"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusInReview   TicketStatus = "in_review"
	TicketStatusQA         TicketStatus = "qa"
	TicketStatusDone       TicketStatus = "done"
)

// AllTicketStatuses returns all statuses in column order
func AllTicketStatuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusBacklog,
		TicketStatusNext,
		TicketStatusInProgress,
		TicketStatusInReview,
		TicketStatusQA,
		TicketStatusDone,
	}
}

// IsValid checks if the ticket status is valid
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusBacklog,
		TicketStatusNext,
		TicketStatusInProgress,
		TicketStatusInReview,
		TicketStatusQA,
		TicketStatusDone:
		return true
	default:
		return false
	}
}

// IsDone reports whether the status is the terminal column
func (s TicketStatus) IsDone() bool {
	return s == TicketStatusDone
}

// Label returns the column title shown on the board
func (s TicketStatus) Label() string {
	switch s {
	case TicketStatusBacklog:
		return "Backlog"
	case TicketStatusNext:
		return "Next"
	case TicketStatusInProgress:
		return "In Progress"
	case TicketStatusInReview:
		return "In Review"
	case TicketStatusQA:
		return "QA"
	case TicketStatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// String returns the string representation of the ticket status
func (s TicketStatus) String() string {
	return string(s)
}

// ParseTicketStatus parses a string into a TicketStatus
func ParseTicketStatus(s string) (TicketStatus, error) {
	status := TicketStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid ticket status: %s", s)
	}
	return status, nil
}
