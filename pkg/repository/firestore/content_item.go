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

type contentItemRepository struct {
	client     *firestore.Client
	collection string
}

func (r *contentItemRepository) Create(ctx context.Context, item *model.ContentItem) (*model.ContentItem, error) {
	created := item.Clone()
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
			return nil, goerr.Wrap(ErrConflict, "content item already exists", goerr.V("id", created.ID))
		}
		return nil, goerr.Wrap(err, "failed to create content item", goerr.V("id", created.ID))
	}

	return created, nil
}

func (r *contentItemRepository) Get(ctx context.Context, id string) (*model.ContentItem, error) {
	docSnap, err := r.client.Collection(r.collection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "content item not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get content item", goerr.V("id", id))
	}

	var c model.ContentItem
	if err := docSnap.DataTo(&c); err != nil {
		return nil, goerr.Wrap(err, "failed to decode content item", goerr.V("id", id))
	}
	return &c, nil
}

func (r *contentItemRepository) List(ctx context.Context) ([]*model.ContentItem, error) {
	iter := r.client.Collection(r.collection).Documents(ctx)
	defer iter.Stop()

	items := make([]*model.ContentItem, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate content items")
		}

		var c model.ContentItem
		if err := docSnap.DataTo(&c); err != nil {
			return nil, goerr.Wrap(err, "failed to decode content item", goerr.V("doc_id", docSnap.Ref.ID))
		}
		items = append(items, &c)
	}

	slices.SortStableFunc(items, model.ContentItemKey)
	return items, nil
}

func (r *contentItemRepository) Update(ctx context.Context, id string, patch model.ContentItemPatch) (*model.ContentItem, error) {
	changes := patch.Changes()
	if len(changes) == 0 {
		return r.Get(ctx, id)
	}

	_, err := r.client.Collection(r.collection).Doc(id).Update(ctx, toUpdates(changes))
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "content item not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to update content item", goerr.V("id", id))
	}

	stored, err := r.Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrUnconfirmed, "updated content item could not be read back",
			goerr.V("id", id), goerr.V("cause", err.Error()))
	}
	return stored, nil
}

func (r *contentItemRepository) Delete(ctx context.Context, id string) error {
	docRef := r.client.Collection(r.collection).Doc(id)

	// Check if document exists
	if _, err := docRef.Get(ctx); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrNotFound, "content item not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check content item existence", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete content item", goerr.V("id", id))
	}
	return nil
}

func (r *contentItemRepository) Watch(ctx context.Context) (<-chan model.ChangeEvent, error) {
	return watchCollection(ctx, r.client, r.collection, model.TableContentItems), nil
}
