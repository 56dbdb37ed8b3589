package firestore

import (
	"context"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type ticketRepository struct {
	client     *firestore.Client
	collection string
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

	_, err := r.client.Collection(r.collection).Doc(created.ID).Create(ctx, created)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(ErrConflict, "ticket already exists", goerr.V("id", created.ID))
		}
		return nil, goerr.Wrap(err, "failed to create ticket", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *ticketRepository) Get(ctx context.Context, id string) (*model.Ticket, error) {
	docSnap, err := r.client.Collection(r.collection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "ticket not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get ticket", goerr.V("id", id))
	}

	var t model.Ticket
	if err := docSnap.DataTo(&t); err != nil {
		return nil, goerr.Wrap(err, "failed to decode ticket", goerr.V("id", id))
	}
	return &t, nil
}

func (r *ticketRepository) List(ctx context.Context) ([]*model.Ticket, error) {
	iter := r.client.Collection(r.collection).OrderBy("UpdatedAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	tickets := make([]*model.Ticket, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate tickets")
		}

		var t model.Ticket
		if err := docSnap.DataTo(&t); err != nil {
			return nil, goerr.Wrap(err, "failed to decode ticket", goerr.V("doc_id", docSnap.Ref.ID))
		}
		tickets = append(tickets, &t)
	}

	slices.SortStableFunc(tickets, model.TicketKey)
	return tickets, nil
}

func (r *ticketRepository) Update(ctx context.Context, id string, patch model.TicketPatch) (*model.Ticket, error) {
	changes := patch.Changes()
	if len(changes) == 0 {
		return r.Get(ctx, id)
	}

	_, err := r.client.Collection(r.collection).Doc(id).Update(ctx, toUpdates(changes))
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "ticket not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to update ticket", goerr.V("id", id))
	}

	stored, err := r.Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrUnconfirmed, "updated ticket could not be read back",
			goerr.V("id", id), goerr.V("cause", err.Error()))
	}
	return stored, nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	docRef := r.client.Collection(r.collection).Doc(id)

	// Check if document exists
	if _, err := docRef.Get(ctx); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrNotFound, "ticket not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check ticket existence", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete ticket", goerr.V("id", id))
	}
	return nil
}

func (r *ticketRepository) Watch(ctx context.Context) (<-chan model.ChangeEvent, error) {
	return watchCollection(ctx, r.client, r.collection, model.TableTickets), nil
}
