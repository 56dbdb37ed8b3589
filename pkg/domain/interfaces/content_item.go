package interfaces

import (
	"context"

	"github.com/secmon-lab/tablero/pkg/domain/model"
)

// ContentItemRepository defines the interface for content calendar data access
type ContentItemRepository interface {
	// Create stores a new item. An empty ID is replaced by a generated one
	// and zero timestamps are set to now.
	Create(ctx context.Context, item *model.ContentItem) (*model.ContentItem, error)

	// Get retrieves an item by ID
	Get(ctx context.Context, id string) (*model.ContentItem, error)

	// List retrieves all items by scheduled date, unscheduled last
	List(ctx context.Context) ([]*model.ContentItem, error)

	// Update writes exactly the fields in patch and returns the stored item
	Update(ctx context.Context, id string, patch model.ContentItemPatch) (*model.ContentItem, error)

	// Delete deletes an item by ID
	Delete(ctx context.Context, id string) error

	// Watch delivers an event for every remote change until ctx is done
	Watch(ctx context.Context) (<-chan model.ChangeEvent, error)
}
