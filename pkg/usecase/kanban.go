package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/domain/model/auth"
	"github.com/secmon-lab/tablero/pkg/domain/model/config"
	"github.com/secmon-lab/tablero/pkg/domain/types"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
)

// Column is one status column of the board
type Column struct {
	Status  types.TicketStatus `json:"status"`
	Label   string             `json:"label"`
	Tickets []*model.Ticket    `json:"tickets"`
}

// TicketInput is the ticket edit form
type TicketInput struct {
	Title       string             `json:"title"`
	Status      types.TicketStatus `json:"status"`
	Role        string             `json:"role"`
	Assignee    string             `json:"assignee"`
	Priority    types.Priority     `json:"priority"`
	Description string             `json:"description"`
}

// KanbanUseCase keeps the board cache and reconciles ticket writes with the
// remote store
type KanbanUseCase struct {
	repo     interfaces.Repository
	board    config.Board
	notifier interfaces.Notifier
	now      func() time.Time
	cache    *Collection[*model.Ticket]

	// mu serializes mutations so one write settles before the next starts
	mu sync.Mutex
}

// NewKanbanUseCase creates the board use case
func NewKanbanUseCase(repo interfaces.Repository, board config.Board, notifier interfaces.Notifier, now func() time.Time) *KanbanUseCase {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if now == nil {
		now = time.Now
	}
	return &KanbanUseCase{
		repo:     repo,
		board:    board,
		notifier: notifier,
		now:      now,
		cache: NewCollection("tickets",
			repo.Ticket().List,
			func(t *model.Ticket) string { return t.ID },
			(*model.Ticket).Clone,
			model.TicketKey,
			notifier,
		),
	}
}

// Load refreshes the board from the remote store
func (uc *KanbanUseCase) Load(ctx context.Context) error {
	return uc.cache.Load(ctx)
}

// Tickets returns the cached tickets, most recently updated first
func (uc *KanbanUseCase) Tickets(ctx context.Context) ([]*model.Ticket, error) {
	if err := uc.cache.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	return uc.cache.Snapshot(), nil
}

// Board groups the cached tickets by status in column order
func (uc *KanbanUseCase) Board(ctx context.Context) ([]Column, error) {
	tickets, err := uc.Tickets(ctx)
	if err != nil {
		return nil, err
	}

	statuses := types.AllTicketStatuses()
	columns := make([]Column, len(statuses))
	index := make(map[types.TicketStatus]int, len(statuses))
	for i, s := range statuses {
		columns[i] = Column{Status: s, Label: s.Label(), Tickets: []*model.Ticket{}}
		index[s] = i
	}
	for _, t := range tickets {
		if i, ok := index[t.Status]; ok {
			columns[i].Tickets = append(columns[i].Tickets, t)
		}
	}
	return columns, nil
}

// Ticket returns one cached ticket
func (uc *KanbanUseCase) Ticket(ctx context.Context, id string) (*model.Ticket, error) {
	if err := uc.cache.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	t, ok := uc.cache.Get(id)
	if !ok {
		return nil, goerr.Wrap(ErrTicketNotFound, "ticket is not on the board", goerr.V(TicketIDKey, id))
	}
	return t, nil
}

// Move drags a ticket to another column. Dropping it on its own column is a
// no-op. A failed remote write is rolled back and reported in the result.
func (uc *KanbanUseCase) Move(ctx context.Context, id string, to types.TicketStatus) (*MoveResult, error) {
	if !to.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "invalid status", goerr.V("status", to))
	}

	return uc.write(ctx, id, "Failed to update ticket", func(t *model.Ticket) (bool, error) {
		return t.SetStatus(to, uc.now().UTC(), uc.board.ClearCompletedOnReopen), nil
	})
}

// Update saves the edit form. A status change follows the same completion
// rule as Move.
func (uc *KanbanUseCase) Update(ctx context.Context, id string, input TicketInput) (*MoveResult, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	return uc.write(ctx, id, "Failed to update ticket", func(t *model.Ticket) (bool, error) {
		now := uc.now().UTC()
		changed := t.SetStatus(input.Status, now, uc.board.ClearCompletedOnReopen)
		if t.Title != input.Title || t.Role != input.Role || t.Assignee != input.Assignee ||
			t.Priority != input.Priority || t.Description != input.Description {
			t.Title = input.Title
			t.Role = input.Role
			t.Assignee = input.Assignee
			t.Priority = input.Priority
			t.Description = input.Description
			t.UpdatedAt = now
			changed = true
		}
		return changed, nil
	})
}

func (uc *KanbanUseCase) write(ctx context.Context, id, failMessage string, mutate func(*model.Ticket) (bool, error)) (*MoveResult, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.cache.EnsureLoaded(ctx); err != nil {
		return nil, err
	}

	result, err := optimisticWrite(ctx, uc.cache, uc.notifier, failMessage, id, mutate,
		model.DiffTicket,
		func(ctx context.Context, p model.TicketPatch) (*model.Ticket, error) {
			return uc.repo.Ticket().Update(ctx, id, p)
		},
	)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, goerr.Wrap(ErrTicketNotFound, "ticket is not on the board", goerr.V(TicketIDKey, id))
	}
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("ticket written", "id", id, "outcome", result.Outcome)
	return result, nil
}

// Create adds a ticket owned by the signed-in user
func (uc *KanbanUseCase) Create(ctx context.Context, input TicketInput) (*model.Ticket, error) {
	if input.Status == "" {
		input.Status = types.TicketStatusBacklog
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	now := uc.now().UTC()
	ticket := &model.Ticket{
		Title:       input.Title,
		Role:        input.Role,
		Assignee:    input.Assignee,
		Priority:    input.Priority,
		Description: input.Description,
		Status:      input.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if ticket.Status.IsDone() {
		ticket.CompletedAt = &now
	}
	if token := auth.TokenFromContext(ctx); token != nil {
		ticket.OwnerID = token.UserID
	}

	created, err := uc.repo.Ticket().Create(ctx, ticket)
	if err != nil {
		uc.notifier.Notify(ctx, model.Notice{Level: model.NoticeError, Message: "Create failed"})
		return nil, goerr.Wrap(err, "failed to create ticket")
	}
	uc.cache.Put(created)
	return created, nil
}

// Delete removes a ticket
func (uc *KanbanUseCase) Delete(ctx context.Context, id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.repo.Ticket().Delete(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			uc.cache.Remove(id)
			return goerr.Wrap(ErrTicketNotFound, "ticket does not exist", goerr.V(TicketIDKey, id))
		}
		uc.notifier.Notify(ctx, model.Notice{Level: model.NoticeError, Message: "Delete failed"})
		return goerr.Wrap(err, "failed to delete ticket", goerr.V(TicketIDKey, id))
	}
	uc.cache.Remove(id)
	return nil
}

// Watch reloads the board on every remote change and forwards the events.
// The returned channel is closed when ctx is done or the feed ends.
func (uc *KanbanUseCase) Watch(ctx context.Context) (<-chan model.ChangeEvent, error) {
	events, err := uc.repo.Ticket().Watch(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to watch tickets")
	}
	return reloadOnChange(ctx, events, uc.Load), nil
}

func (input *TicketInput) validate() error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return goerr.Wrap(ErrInvalidInput, "title is required")
	}
	if !input.Status.IsValid() {
		return goerr.Wrap(ErrInvalidInput, "invalid status", goerr.V("status", input.Status))
	}
	if !input.Priority.IsValid() {
		return goerr.Wrap(ErrInvalidInput, "invalid priority", goerr.V("priority", input.Priority))
	}
	return nil
}

// reloadOnChange reloads a view for every event and passes the event on once
// the reload finished
func reloadOnChange(ctx context.Context, events <-chan model.ChangeEvent, load func(context.Context) error) <-chan model.ChangeEvent {
	out := make(chan model.ChangeEvent)
	go func() {
		defer close(out)
		logger := logging.From(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if err := load(ctx); err != nil {
					logger.Warn("failed to reload after change", "table", ev.Table, "error", err)
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
