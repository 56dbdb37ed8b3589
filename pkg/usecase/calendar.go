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
	"github.com/secmon-lab/tablero/pkg/domain/model/config"
	"github.com/secmon-lab/tablero/pkg/domain/types"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
)

// ContentItemInput is the content card form
type ContentItemInput struct {
	Week             *int         `json:"week"`
	DayOfWeek        *string      `json:"day_of_week"`
	Pillar           types.Pillar `json:"pillar"`
	Title            string       `json:"title"`
	Description      string       `json:"description"`
	ScheduledDate    types.Date   `json:"scheduled_date"`
	HasIdea          bool         `json:"has_idea"`
	HasScript        bool         `json:"has_script"`
	HasRecording     bool         `json:"has_recording"`
	HasEdit          bool         `json:"has_edit"`
	IsReady          bool         `json:"is_ready"`
	Notes            string       `json:"notes"`
	InstagramCaption string       `json:"instagram_caption"`
	TiktokCaption    string       `json:"tiktok_caption"`
	Script           string       `json:"script"`
	Effort           types.Effort `json:"effort"`
}

// applyTo copies the form onto item
func (input ContentItemInput) applyTo(item *model.ContentItem) {
	item.Week = copyOf(input.Week)
	item.DayOfWeek = copyOf(input.DayOfWeek)
	item.Pillar = input.Pillar
	item.Title = strings.TrimSpace(input.Title)
	item.Description = input.Description
	item.ScheduledDate = input.ScheduledDate
	item.HasIdea = input.HasIdea
	item.HasScript = input.HasScript
	item.HasRecording = input.HasRecording
	item.HasEdit = input.HasEdit
	item.IsReady = input.IsReady
	item.Notes = input.Notes
	item.InstagramCaption = input.InstagramCaption
	item.TiktokCaption = input.TiktokCaption
	item.Script = input.Script
	item.Effort = input.Effort
}

func copyOf[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// CalendarUseCase keeps the content calendar cache and reconciles item
// writes with the remote store
type CalendarUseCase struct {
	repo     interfaces.Repository
	calendar config.Calendar
	notifier interfaces.Notifier
	now      func() time.Time
	cache    *Collection[*model.ContentItem]

	mu sync.Mutex
}

// NewCalendarUseCase creates the calendar use case
func NewCalendarUseCase(repo interfaces.Repository, calendar config.Calendar, notifier interfaces.Notifier, now func() time.Time) *CalendarUseCase {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if now == nil {
		now = time.Now
	}
	if len(calendar.Pillars) == 0 {
		calendar.Pillars = types.DefaultPillars()
	}
	if calendar.DefaultEffort == "" {
		calendar.DefaultEffort = types.EffortLow
	}
	if calendar.SummaryLimit <= 0 {
		calendar.SummaryLimit = config.DefaultSummaryLimit
	}
	return &CalendarUseCase{
		repo:     repo,
		calendar: calendar,
		notifier: notifier,
		now:      now,
		cache: NewCollection("content",
			repo.ContentItem().List,
			func(c *model.ContentItem) string { return c.ID },
			(*model.ContentItem).Clone,
			model.ContentItemKey,
			notifier,
		),
	}
}

// Pillars returns the configured pillars in display order
func (uc *CalendarUseCase) Pillars() []types.Pillar {
	return append([]types.Pillar(nil), uc.calendar.Pillars...)
}

// Today returns the current calendar date
func (uc *CalendarUseCase) Today() types.Date {
	return dateOf(uc.now())
}

// Load refreshes the calendar from the remote store
func (uc *CalendarUseCase) Load(ctx context.Context) error {
	return uc.cache.Load(ctx)
}

// Items returns the cached items in calendar order
func (uc *CalendarUseCase) Items(ctx context.Context) ([]*model.ContentItem, error) {
	if err := uc.cache.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	return uc.cache.Snapshot(), nil
}

// Item returns an existing card for the edit form
func (uc *CalendarUseCase) Item(ctx context.Context, id string) (*model.ContentItem, error) {
	if err := uc.cache.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	item, ok := uc.cache.Get(id)
	if !ok {
		return nil, goerr.Wrap(ErrContentItemNotFound, "item is not on the calendar", goerr.V(ItemIDKey, id))
	}
	return item, nil
}

// Draft returns an unsaved card pre-filled for date, as opened by clicking an
// empty day
func (uc *CalendarUseCase) Draft(date types.Date) *model.ContentItem {
	return &model.ContentItem{
		Pillar:        uc.calendar.Pillars[0],
		ScheduledDate: date,
		Effort:        uc.calendar.DefaultEffort,
	}
}

// Reschedule drops a card on another day
func (uc *CalendarUseCase) Reschedule(ctx context.Context, id string, date types.Date) (*ItemResult, error) {
	if date.IsZero() {
		return nil, goerr.Wrap(ErrInvalidInput, "date is required", goerr.V(ItemIDKey, id))
	}

	return uc.write(ctx, id, "Reschedule failed", func(item *model.ContentItem) (bool, error) {
		if item.ScheduledDate == date {
			return false, nil
		}
		item.ScheduledDate = date
		item.UpdatedAt = uc.now().UTC()
		return true, nil
	})
}

// ToggleStep checks or unchecks a checklist step. Checking a step checks all
// earlier ones and unchecking clears all later ones.
func (uc *CalendarUseCase) ToggleStep(ctx context.Context, id string, step types.ProgressStep, checked bool) (*ItemResult, error) {
	if !step.IsValid() {
		return nil, goerr.Wrap(ErrInvalidInput, "unknown progress step", goerr.V("step", step))
	}

	return uc.write(ctx, id, "Update failed", func(item *model.ContentItem) (bool, error) {
		before := item.Progress()
		if err := item.ToggleStep(step, checked); err != nil {
			return false, err
		}
		after := item.Progress()
		for i := range before {
			if before[i] != after[i] {
				item.UpdatedAt = uc.now().UTC()
				return true, nil
			}
		}
		return false, nil
	})
}

// Save writes the edit form of an existing card
func (uc *CalendarUseCase) Save(ctx context.Context, id string, input ContentItemInput) (*ItemResult, error) {
	return uc.write(ctx, id, "Update failed", func(item *model.ContentItem) (bool, error) {
		edited := item.Clone()
		input.applyTo(edited)
		if err := edited.Validate(uc.calendar.Pillars); err != nil {
			return false, goerr.Wrap(err, "invalid content item", goerr.V(ItemIDKey, id))
		}
		if model.DiffContentItem(item, edited).IsEmpty() {
			return false, nil
		}
		input.applyTo(item)
		item.UpdatedAt = uc.now().UTC()
		return true, nil
	})
}

func (uc *CalendarUseCase) write(ctx context.Context, id, failMessage string, mutate func(*model.ContentItem) (bool, error)) (*ItemResult, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.cache.EnsureLoaded(ctx); err != nil {
		return nil, err
	}

	result, err := optimisticWrite(ctx, uc.cache, uc.notifier, failMessage, id, mutate,
		model.DiffContentItem,
		func(ctx context.Context, p model.ContentItemPatch) (*model.ContentItem, error) {
			return uc.repo.ContentItem().Update(ctx, id, p)
		},
	)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, goerr.Wrap(ErrContentItemNotFound, "item is not on the calendar", goerr.V(ItemIDKey, id))
	}
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("content item written", "id", id, "outcome", result.Outcome)
	return result, nil
}

// Create saves a new card. Progress flags must be prefix-closed.
func (uc *CalendarUseCase) Create(ctx context.Context, input ContentItemInput) (*model.ContentItem, error) {
	if input.Pillar == "" {
		input.Pillar = uc.calendar.Pillars[0]
	}
	if input.Effort == "" {
		input.Effort = uc.calendar.DefaultEffort
	}

	now := uc.now().UTC()
	item := &model.ContentItem{CreatedAt: now, UpdatedAt: now}
	input.applyTo(item)
	if err := item.Validate(uc.calendar.Pillars); err != nil {
		return nil, goerr.Wrap(err, "invalid content item")
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	created, err := uc.repo.ContentItem().Create(ctx, item)
	if err != nil {
		uc.notifier.Notify(ctx, model.Notice{Level: model.NoticeError, Message: "Create failed"})
		return nil, goerr.Wrap(err, "failed to create content item")
	}
	uc.cache.Put(created)
	return created, nil
}

// Delete removes a card
func (uc *CalendarUseCase) Delete(ctx context.Context, id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := uc.repo.ContentItem().Delete(ctx, id); err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			uc.cache.Remove(id)
			return goerr.Wrap(ErrContentItemNotFound, "item does not exist", goerr.V(ItemIDKey, id))
		}
		uc.notifier.Notify(ctx, model.Notice{Level: model.NoticeError, Message: "Delete failed"})
		return goerr.Wrap(err, "failed to delete content item", goerr.V(ItemIDKey, id))
	}
	uc.cache.Remove(id)
	return nil
}

// Month returns the month grid. month is 1-based.
func (uc *CalendarUseCase) Month(ctx context.Context, year, month int) (*MonthView, error) {
	items, err := uc.Items(ctx)
	if err != nil {
		return nil, err
	}
	return BuildMonth(items, year, month, dateOf(uc.now()))
}

// Week returns the list view week of the month. month is 1-based.
func (uc *CalendarUseCase) Week(ctx context.Context, year, month int) (*WeekView, error) {
	items, err := uc.Items(ctx)
	if err != nil {
		return nil, err
	}
	return BuildWeek(items, year, month, dateOf(uc.now()))
}

// Summary returns the derived statistics of the current snapshot
func (uc *CalendarUseCase) Summary(ctx context.Context) (*Summary, error) {
	items, err := uc.Items(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeSummary(items, dateOf(uc.now()), uc.calendar.Pillars, uc.calendar.SummaryLimit), nil
}

// Watch reloads the calendar on every remote change and forwards the events
func (uc *CalendarUseCase) Watch(ctx context.Context) (<-chan model.ChangeEvent, error) {
	events, err := uc.repo.ContentItem().Watch(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to watch content items")
	}
	return reloadOnChange(ctx, events, uc.Load), nil
}
