package usecase

import (
	"context"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
)

// Collection is the local cache of one view. It holds a sorted copy of the
// remote collection and is only replaced wholesale by Load.
type Collection[T any] struct {
	name     string
	fetch    func(ctx context.Context) ([]T, error)
	idOf     func(T) string
	clone    func(T) T
	compare  func(a, b T) int
	notifier interfaces.Notifier

	mu     sync.RWMutex
	items  []T
	loaded bool
}

// NewCollection creates an empty cache. fetch reads the full remote
// collection, compare declares the view order.
func NewCollection[T any](
	name string,
	fetch func(ctx context.Context) ([]T, error),
	idOf func(T) string,
	clone func(T) T,
	compare func(a, b T) int,
	notifier interfaces.Notifier,
) *Collection[T] {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Collection[T]{
		name:     name,
		fetch:    fetch,
		idOf:     idOf,
		clone:    clone,
		compare:  compare,
		notifier: notifier,
	}
}

// Load fetches the collection and replaces the cache. On failure the cache
// keeps its previous contents and an error notice is sent.
func (c *Collection[T]) Load(ctx context.Context) error {
	items, err := c.fetch(ctx)
	if err != nil {
		c.notifier.Notify(ctx, model.Notice{
			Level:   model.NoticeError,
			Message: "Failed to load " + c.name,
		})
		return goerr.Wrap(err, "failed to load collection", goerr.V(CollectionKey, c.name))
	}

	sorted := make([]T, len(items))
	for i, item := range items {
		sorted[i] = c.clone(item)
	}
	slices.SortStableFunc(sorted, c.compare)

	c.mu.Lock()
	c.items = sorted
	c.loaded = true
	c.mu.Unlock()

	logging.From(ctx).Debug("collection loaded", "collection", c.name, "count", len(sorted))
	return nil
}

// Revert discards optimistic state by reloading from the remote store
func (c *Collection[T]) Revert(ctx context.Context) error {
	return c.Load(ctx)
}

// EnsureLoaded loads the collection once
func (c *Collection[T]) EnsureLoaded(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}
	return c.Load(ctx)
}

// Snapshot returns copies of all cached records in view order
func (c *Collection[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, len(c.items))
	for i, item := range c.items {
		out[i] = c.clone(item)
	}
	return out
}

// Get returns a copy of the cached record
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(id); i >= 0 {
		return c.clone(c.items[i]), true
	}
	var zero T
	return zero, false
}

// Put inserts or replaces a record and keeps the view order
func (c *Collection[T]) Put(record T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(c.clone(record))
}

// Remove drops a record from the cache
func (c *Collection[T]) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(id); i >= 0 {
		c.items = slices.Delete(c.items, i, i+1)
	}
}

// ApplyOptimistic mutates the cached record in place of the remote write.
// mutate reports whether it changed anything; an unchanged record leaves the
// cache untouched. It returns copies of the record before and after.
func (c *Collection[T]) ApplyOptimistic(id string, mutate func(T) (bool, error)) (before, after T, changed bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return before, after, false, goerr.Wrap(interfaces.ErrNotFound, "record is not cached",
			goerr.V(CollectionKey, c.name), goerr.V(RecordIDKey, id))
	}

	before = c.clone(c.items[i])
	working := c.clone(c.items[i])
	changed, err = mutate(working)
	if err != nil {
		return before, before, false, err
	}
	if !changed {
		return before, before, false, nil
	}

	c.putLocked(working)
	return before, c.clone(working), true, nil
}

// Rollback restores the cached record with restore, which undoes only the
// fields an optimistic change touched. It reports false when the record is
// no longer cached or unchanged says it moved on since the optimistic write.
func (c *Collection[T]) Rollback(id string, unchanged func(T) bool, restore func(T)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 || !unchanged(c.items[i]) {
		return false
	}
	record := c.clone(c.items[i])
	restore(record)
	c.putLocked(record)
	return true
}

func (c *Collection[T]) putLocked(record T) {
	id := c.idOf(record)
	if i := c.indexOf(id); i >= 0 {
		c.items = slices.Delete(c.items, i, i+1)
	}
	pos, _ := slices.BinarySearchFunc(c.items, record, c.compare)
	for pos < len(c.items) && c.compare(c.items[pos], record) == 0 {
		pos++
	}
	c.items = slices.Insert(c.items, pos, record)
}

func (c *Collection[T]) indexOf(id string) int {
	return slices.IndexFunc(c.items, func(item T) bool {
		return c.idOf(item) == id
	})
}
