package usecase

import (
	"context"
	"errors"

	"github.com/secmon-lab/tablero/pkg/domain/interfaces"
	"github.com/secmon-lab/tablero/pkg/domain/model"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
)

// Outcome is how an optimistic write ended
type Outcome string

const (
	// OutcomeNoop means the write changed nothing and was not sent
	OutcomeNoop Outcome = "noop"
	// OutcomeConfirmed means the remote store accepted the write
	OutcomeConfirmed Outcome = "confirmed"
	// OutcomeRolledBack means the remote write failed and the local change
	// was undone
	OutcomeRolledBack Outcome = "rolled_back"
)

// WriteResult reports an optimistic write. Record is the cached state after
// the write settled.
type WriteResult[T any] struct {
	Outcome Outcome `json:"outcome"`
	Record  T       `json:"record"`
	Reason  string  `json:"reason,omitempty"`
}

// MoveResult is the result of dragging a ticket to a column
type MoveResult = WriteResult[*model.Ticket]

// ItemResult is the result of an optimistic content item write
type ItemResult = WriteResult[*model.ContentItem]

// patch is a field diff that can be applied to a cached record
type patch[T any] interface {
	Apply(T)
	IsEmpty() bool
}

// optimisticWrite runs the reconciliation cycle shared by all draggable
// views: mutate the cache, send exactly the changed fields, and on failure
// restore only those fields. The cache is reloaded instead when the record
// was deleted remotely, when a watch reload replaced it in the meantime, or
// when the write landed but could not be read back.
func optimisticWrite[T any, P patch[T]](
	ctx context.Context,
	cache *Collection[T],
	notifier interfaces.Notifier,
	failMessage string,
	id string,
	mutate func(T) (bool, error),
	diff func(before, after T) P,
	remote func(ctx context.Context, p P) (T, error),
) (*WriteResult[T], error) {
	before, after, changed, err := cache.ApplyOptimistic(id, mutate)
	if err != nil {
		return nil, err
	}
	if !changed {
		return &WriteResult[T]{Outcome: OutcomeNoop, Record: before}, nil
	}

	stored, err := remote(ctx, diff(before, after))
	if err == nil {
		cache.Put(stored)
		return &WriteResult[T]{Outcome: OutcomeConfirmed, Record: stored}, nil
	}

	logger := logging.From(ctx)
	if errors.Is(err, interfaces.ErrUnconfirmed) {
		logger.Warn("remote write is unconfirmed, reloading",
			"collection", cache.name, "id", id, "error", err)
		if loadErr := cache.Revert(ctx); loadErr != nil {
			logger.Error("failed to reload after unconfirmed write", "collection", cache.name, "error", loadErr)
		}
		record, ok := cache.Get(id)
		if !ok {
			record = after
		}
		return &WriteResult[T]{Outcome: OutcomeConfirmed, Record: record}, nil
	}

	logger.Warn("remote write failed, rolling back",
		"collection", cache.name, "id", id, "error", err)

	unchanged := func(current T) bool { return diff(after, current).IsEmpty() }
	inverse := diff(after, before)
	restored := !errors.Is(err, interfaces.ErrNotFound) && cache.Rollback(id, unchanged, inverse.Apply)
	if !restored {
		if loadErr := cache.Revert(ctx); loadErr != nil {
			logger.Error("failed to reload after rollback", "collection", cache.name, "error", loadErr)
		}
	}

	notifier.Notify(ctx, model.Notice{Level: model.NoticeError, Message: failMessage})

	record, ok := cache.Get(id)
	if !ok {
		record = before
	}
	return &WriteResult[T]{
		Outcome: OutcomeRolledBack,
		Record:  record,
		Reason:  err.Error(),
	}, nil
}
