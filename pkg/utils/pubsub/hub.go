package pubsub

import (
	"context"
	"sync"
)

const defaultBuffer = 64

// Hub fans published values out to subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the value.
type Hub[T any] struct {
	mu     sync.Mutex
	subs   map[int]chan T
	nextID int
}

// New creates an empty hub
func New[T any]() *Hub[T] {
	return &Hub[T]{
		subs: make(map[int]chan T),
	}
}

// Subscribe returns a channel that receives values until ctx is done, when
// the channel is closed.
func (h *Hub[T]) Subscribe(ctx context.Context) <-chan T {
	ch := make(chan T, defaultBuffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, id)
		close(ch)
		h.mu.Unlock()
	}()

	return ch
}

// Publish delivers v to every subscriber
func (h *Hub[T]) Publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

// Len returns the number of subscribers
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
