// Package async runs follow-up work that must outlive the request that
// started it.
package async

import (
	"context"

	"github.com/secmon-lab/tablero/pkg/utils/errutil"
	"github.com/secmon-lab/tablero/pkg/utils/logging"
)

// Dispatch runs fn in its own goroutine. The context passed to fn keeps the
// caller's values, including its logger, but is never cancelled. Errors and
// panics are logged and reported; they never reach the caller.
func Dispatch(ctx context.Context, fn func(ctx context.Context) error) {
	bg := context.WithoutCancel(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.From(bg).Error("background task panicked", "panic", r)
			}
		}()

		if err := fn(bg); err != nil {
			errutil.Handle(bg, err, "background task failed")
		}
	}()
}
