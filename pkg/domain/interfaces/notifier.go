package interfaces

import (
	"context"

	"github.com/secmon-lab/tablero/pkg/domain/model"
)

// Notifier delivers transient notices to connected clients
type Notifier interface {
	Notify(ctx context.Context, notice model.Notice)
}
