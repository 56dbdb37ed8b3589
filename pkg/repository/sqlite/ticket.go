package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/domain/types"
	"github.com/secmon-lab/tablero/pkg/utils/pubsub"
)

const ticketColumns = `id, title, status, role, assignee, priority, description, owner_id, created_at, updated_at, completed_at`

var ticketFieldColumns = map[string]string{
	"Title":       "title",
	"Status":      "status",
	"Role":        "role",
	"Assignee":    "assignee",
	"Priority":    "priority",
	"Description": "description",
	"UpdatedAt":   "updated_at",
	"CompletedAt": "completed_at",
}

type ticketRepository struct {
	db  *sql.DB
	hub *pubsub.Hub[model.ChangeEvent]
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*model.Ticket, error) {
	var (
		t                  model.Ticket
		status, priority   string
		createdRaw, updRaw string
		completedRaw       sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Title, &status, &t.Role, &t.Assignee, &priority,
		&t.Description, &t.OwnerID, &createdRaw, &updRaw, &completedRaw); err != nil {
		return nil, err
	}
	t.Status = types.TicketStatus(status)
	t.Priority = types.Priority(priority)
	t.CreatedAt = parseTS(createdRaw)
	t.UpdatedAt = parseTS(updRaw)
	t.CompletedAt = parseNullTS(completedRaw)
	return &t, nil
}

func (r *ticketRepository) publish(kind model.ChangeKind, id string) {
	r.hub.Publish(model.ChangeEvent{Table: model.TableTickets, Kind: kind, ID: id})
}

func (r *ticketRepository) Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	created := ticket.Clone()
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO tickets(`+ticketColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID, created.Title, string(created.Status), created.Role, created.Assignee,
		string(created.Priority), created.Description, created.OwnerID,
		ts(created.CreatedAt), ts(created.UpdatedAt), nullableTS(created.CompletedAt))
	if err != nil {
		if isUniqueErr(err) {
			return nil, goerr.Wrap(ErrConflict, "ticket already exists", goerr.V("id", created.ID))
		}
		return nil, goerr.Wrap(err, "failed to insert ticket", goerr.V("id", created.ID))
	}

	r.publish(model.ChangeInsert, created.ID)
	return created, nil
}

func (r *ticketRepository) Get(ctx context.Context, id string) (*model.Ticket, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id)
	t, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(ErrNotFound, "ticket not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get ticket", goerr.V("id", id))
	}
	return t, nil
}

func (r *ticketRepository) List(ctx context.Context) ([]*model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+ticketColumns+` FROM tickets`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query tickets")
	}
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan ticket")
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate tickets")
	}

	// timestamps are stored as text; order on the parsed values
	slices.SortStableFunc(tickets, model.TicketKey)
	return tickets, nil
}

func (r *ticketRepository) Update(ctx context.Context, id string, patch model.TicketPatch) (*model.Ticket, error) {
	changes := patch.Changes()
	if len(changes) == 0 {
		return r.Get(ctx, id)
	}

	query, args, err := buildUpdate("tickets", ticketFieldColumns, changes, id)
	if err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update ticket", goerr.V("id", id))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, goerr.Wrap(ErrNotFound, "ticket not found", goerr.V("id", id))
	}

	r.publish(model.ChangeUpdate, id)
	stored, err := r.Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrUnconfirmed, "updated ticket could not be read back",
			goerr.V("id", id), goerr.V("cause", err.Error()))
	}
	return stored, nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = ?`, id)
	if err != nil {
		return goerr.Wrap(err, "failed to delete ticket", goerr.V("id", id))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return goerr.Wrap(ErrNotFound, "ticket not found", goerr.V("id", id))
	}

	r.publish(model.ChangeDelete, id)
	return nil
}

func (r *ticketRepository) Watch(ctx context.Context) (<-chan model.ChangeEvent, error) {
	return r.hub.Subscribe(ctx), nil
}
