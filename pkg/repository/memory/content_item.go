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

type contentItemRepository struct {
	mu    sync.RWMutex
	items map[string]*model.ContentItem
	hub   *pubsub.Hub[model.ChangeEvent]
}

func newContentItemRepository(hub *pubsub.Hub[model.ChangeEvent]) *contentItemRepository {
	return &contentItemRepository{
		items: make(map[string]*model.ContentItem),
		hub:   hub,
	}
}

func (r *contentItemRepository) publish(kind model.ChangeKind, id string) {
	r.hub.Publish(model.ChangeEvent{Table: model.TableContentItems, Kind: kind, ID: id})
}

func (r *contentItemRepository) Create(ctx context.Context, item *model.ContentItem) (*model.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := item.Clone()
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if _, exists := r.items[created.ID]; exists {
		return nil, goerr.Wrap(ErrConflict, "content item already exists", goerr.V("id", created.ID))
	}

	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = now
	}

	r.items[created.ID] = created
	r.publish(model.ChangeInsert, created.ID)
	return created.Clone(), nil
}

func (r *contentItemRepository) Get(ctx context.Context, id string) (*model.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "content item not found", goerr.V("id", id))
	}
	return item.Clone(), nil
}

func (r *contentItemRepository) List(ctx context.Context) ([]*model.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*model.ContentItem, 0, len(r.items))
	for _, item := range r.items {
		items = append(items, item.Clone())
	}
	slices.SortStableFunc(items, model.ContentItemKey)
	return items, nil
}

func (r *contentItemRepository) Update(ctx context.Context, id string, patch model.ContentItemPatch) (*model.ContentItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.items[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "content item not found", goerr.V("id", id))
	}

	updated := existing.Clone()
	patch.Apply(updated)
	r.items[id] = updated
	r.publish(model.ChangeUpdate, id)
	return updated.Clone(), nil
}

func (r *contentItemRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return goerr.Wrap(ErrNotFound, "content item not found", goerr.V("id", id))
	}
	delete(r.items, id)
	r.publish(model.ChangeDelete, id)
	return nil
}

func (r *contentItemRepository) Watch(ctx context.Context) (<-chan model.ChangeEvent, error) {
	return r.hub.Subscribe(ctx), nil
}
