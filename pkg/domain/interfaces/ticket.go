package interfaces

import (
	"context"

	"github.com/secmon-lab/tablero/pkg/domain/model"
)

// TicketRepository defines the interface for kanban ticket data access
type TicketRepository interface {
	// Create stores a new ticket. An empty ID is replaced by a generated one
	// and zero timestamps are set to now.
	Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error)

	// Get retrieves a ticket by ID
	Get(ctx context.Context, id string) (*model.Ticket, error)

	// List retrieves all tickets, most recently updated first
	List(ctx context.Context) ([]*model.Ticket, error)

	// Update writes exactly the fields in patch and returns the stored ticket
	Update(ctx context.Context, id string, patch model.TicketPatch) (*model.Ticket, error)

	// Delete deletes a ticket by ID
	Delete(ctx context.Context, id string) error

	// Watch delivers an event for every remote change until ctx is done
	Watch(ctx context.Context) (<-chan model.ChangeEvent, error)
}
