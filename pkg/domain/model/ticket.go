package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/types"
)

// Ticket is a card on the kanban board
type Ticket struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Status      types.TicketStatus `json:"status"`
	Role        string             `json:"role"`
	Assignee    string             `json:"assignee"`
	Priority    types.Priority     `json:"priority"`
	Description string             `json:"description"`
	OwnerID     string             `json:"owner_id"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	CompletedAt *time.Time         `json:"completed_at"`
}

// Clone returns a deep copy of the ticket
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	c := *t
	c.CompletedAt = clonePtr(t.CompletedAt)
	return &c
}

// Validate checks the fields a user can set
func (t *Ticket) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return goerr.Wrap(ErrInvalidTicket, "title is required", goerr.V(TicketIDKey, t.ID))
	}
	if !t.Status.IsValid() {
		return goerr.Wrap(ErrInvalidTicket, "invalid status",
			goerr.V(TicketIDKey, t.ID), goerr.V(ValueKey, t.Status))
	}
	if !t.Priority.IsValid() {
		return goerr.Wrap(ErrInvalidTicket, "invalid priority",
			goerr.V(TicketIDKey, t.ID), goerr.V(ValueKey, t.Priority))
	}
	return nil
}

// SetStatus changes the status and applies the completion rule: entering done
// stamps CompletedAt. When clearOnReopen is true, leaving done clears it.
// It reports whether the status changed.
func (t *Ticket) SetStatus(status types.TicketStatus, now time.Time, clearOnReopen bool) bool {
	if t.Status == status {
		return false
	}
	t.Status = status
	t.UpdatedAt = now
	switch {
	case status.IsDone():
		completed := now
		t.CompletedAt = &completed
	case clearOnReopen:
		t.CompletedAt = nil
	}
	return true
}

// TicketPatch carries the changed fields of a ticket. Nil fields are left
// untouched by Apply and by the repositories.
type TicketPatch struct {
	Title       *string
	Status      *types.TicketStatus
	Role        *string
	Assignee    *string
	Priority    *types.Priority
	Description *string
	UpdatedAt   *time.Time
	CompletedAt *Nullable[time.Time]
}

// DiffTicket returns the patch that turns before into after
func DiffTicket(before, after *Ticket) TicketPatch {
	var p TicketPatch
	if before.Title != after.Title {
		p.Title = ref(after.Title)
	}
	if before.Status != after.Status {
		p.Status = ref(after.Status)
	}
	if before.Role != after.Role {
		p.Role = ref(after.Role)
	}
	if before.Assignee != after.Assignee {
		p.Assignee = ref(after.Assignee)
	}
	if before.Priority != after.Priority {
		p.Priority = ref(after.Priority)
	}
	if before.Description != after.Description {
		p.Description = ref(after.Description)
	}
	if !before.UpdatedAt.Equal(after.UpdatedAt) {
		updated := after.UpdatedAt
		p.UpdatedAt = &updated
	}
	if !timePtrEqual(before.CompletedAt, after.CompletedAt) {
		p.CompletedAt = nullableOf(after.CompletedAt)
	}
	return p
}

// IsEmpty reports whether the patch changes nothing
func (p TicketPatch) IsEmpty() bool {
	return len(p.Changes()) == 0
}

// Apply writes the patch fields onto t
func (p TicketPatch) Apply(t *Ticket) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Role != nil {
		t.Role = *p.Role
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.UpdatedAt != nil {
		t.UpdatedAt = *p.UpdatedAt
	}
	if p.CompletedAt != nil {
		t.CompletedAt = clonePtr(p.CompletedAt.Value)
	}
}

// Changes lists the changed fields with their new values
func (p TicketPatch) Changes() []FieldChange {
	var changes []FieldChange
	if p.Title != nil {
		changes = append(changes, FieldChange{Name: "Title", Value: *p.Title})
	}
	if p.Status != nil {
		changes = append(changes, FieldChange{Name: "Status", Value: string(*p.Status)})
	}
	if p.Role != nil {
		changes = append(changes, FieldChange{Name: "Role", Value: *p.Role})
	}
	if p.Assignee != nil {
		changes = append(changes, FieldChange{Name: "Assignee", Value: *p.Assignee})
	}
	if p.Priority != nil {
		changes = append(changes, FieldChange{Name: "Priority", Value: string(*p.Priority)})
	}
	if p.Description != nil {
		changes = append(changes, FieldChange{Name: "Description", Value: *p.Description})
	}
	if p.UpdatedAt != nil {
		changes = append(changes, FieldChange{Name: "UpdatedAt", Value: *p.UpdatedAt})
	}
	if p.CompletedAt != nil {
		changes = append(changes, FieldChange{Name: "CompletedAt", Value: p.CompletedAt.Any()})
	}
	return changes
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// TicketKey orders tickets for the board: most recently updated first
func TicketKey(a, b *Ticket) int {
	return b.UpdatedAt.Compare(a.UpdatedAt)
}
