package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/repository/memory"
)

var errRemote = errors.New("remote store unavailable")

// flakyRepo wraps the memory repository so tests can make remote calls fail
type flakyRepo struct {
	*memory.Memory
	tickets *flakyTickets
	items   *flakyItems
}

func newFlakyRepo() *flakyRepo {
	mem := memory.New()
	return &flakyRepo{
		Memory:  mem,
		tickets: &flakyTickets{TicketRepository: mem.Ticket()},
		items:   &flakyItems{ContentItemRepository: mem.ContentItem()},
	}
}

func (r *flakyRepo) Ticket() interfaces.TicketRepository {
	return r.tickets
}

func (r *flakyRepo) ContentItem() interfaces.ContentItemRepository {
	return r.items
}

type flakyTickets struct {
	interfaces.TicketRepository

	mu         sync.Mutex
	failUpdate error
	failList   error
	updates    []model.TicketPatch
}

func (f *flakyTickets) setFailUpdate(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failUpdate = err
}

func (f *flakyTickets) setFailList(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failList = err
}

func (f *flakyTickets) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func (f *flakyTickets) List(ctx context.Context) ([]*model.Ticket, error) {
	f.mu.Lock()
	err := f.failList
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.TicketRepository.List(ctx)
}

func (f *flakyTickets) Update(ctx context.Context, id string, patch model.TicketPatch) (*model.Ticket, error) {
	f.mu.Lock()
	f.updates = append(f.updates, patch)
	err := f.failUpdate
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.TicketRepository.Update(ctx, id, patch)
}

type flakyItems struct {
	interfaces.ContentItemRepository

	mu           sync.Mutex
	failUpdate   error
	failReadBack error
	beforeFail   func()
	updates      []model.ContentItemPatch
}

// setFailReadBack makes updates land but report err, like a store whose
// follow-up read failed
func (f *flakyItems) setFailReadBack(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failReadBack = err
}

// setBeforeFail runs fn inside a failing update, before the error returns
func (f *flakyItems) setBeforeFail(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beforeFail = fn
}

func (f *flakyItems) setFailUpdate(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failUpdate = err
}

func (f *flakyItems) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func (f *flakyItems) Update(ctx context.Context, id string, patch model.ContentItemPatch) (*model.ContentItem, error) {
	f.mu.Lock()
	f.updates = append(f.updates, patch)
	err, readErr, hook := f.failUpdate, f.failReadBack, f.beforeFail
	f.mu.Unlock()
	if err != nil {
		if hook != nil {
			hook()
		}
		return nil, err
	}
	stored, updateErr := f.ContentItemRepository.Update(ctx, id, patch)
	if updateErr == nil && readErr != nil {
		return nil, readErr
	}
	return stored, updateErr
}

// recorder collects notices
type recorder struct {
	mu      sync.Mutex
	notices []model.Notice
}

func (r *recorder) Notify(ctx context.Context, notice model.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice)
}

func (r *recorder) list() []model.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Notice(nil), r.notices...)
}

// clock is a settable time source
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *clock {
	return &clock{now: t}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func ptr[T any](v T) *T {
	return &v
}
