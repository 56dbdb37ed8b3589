package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/utils/pubsub"
)

type ticketRepository struct {
	mu      sync.RWMutex
	tickets map[string]*model.Ticket
	hub     *pubsub.Hub[model.ChangeEvent]
}

func newTicketRepository(hub *pubsub.Hub[model.ChangeEvent]) *ticketRepository {
	return &ticketRepository{
		tickets: make(map[string]*model.Ticket),
		hub:     hub,
	}
}

func (r *ticketRepository) publish(kind model.ChangeKind, id string) {
	r.hub.Publish(model.ChangeEvent{Table: model.TableTickets, Kind: kind, ID: id})
}

func (r *ticketRepository) Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := ticket.Clone()
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if _, exists := r.tickets[created.ID]; exists {
		return nil, goerr.Wrap(ErrConflict, "ticket already exists", goerr.V("id", created.ID))
	}

	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = now
	}

	r.tickets[created.ID] = created
	r.publish(model.ChangeInsert, created.ID)
	return created.Clone(), nil
}

func (r *ticketRepository) Get(ctx context.Context, id string) (*model.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, exists := r.tickets[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "ticket not found", goerr.V("id", id))
	}
	return ticket.Clone(), nil
}

func (r *ticketRepository) List(ctx context.Context) ([]*model.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tickets := make([]*model.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		tickets = append(tickets, ticket.Clone())
	}
	slices.SortStableFunc(tickets, model.TicketKey)
	return tickets, nil
}

func (r *ticketRepository) Update(ctx context.Context, id string, patch model.TicketPatch) (*model.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.tickets[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "ticket not found", goerr.V("id", id))
	}

	updated := existing.Clone()
	patch.Apply(updated)
	r.tickets[id] = updated
	r.publish(model.ChangeUpdate, id)
	return updated.Clone(), nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tickets[id]; !exists {
		return goerr.Wrap(ErrNotFound, "ticket not found", goerr.V("id", id))
	}
	delete(r.tickets, id)
	r.publish(model.ChangeDelete, id)
	return nil
}

func (r *ticketRepository) Watch(ctx context.Context) (<-chan model.ChangeEvent, error) {
	return r.hub.Subscribe(ctx), nil
}
