package interfaces

import (
	"context"
	"errors"

	"github.com/secmon-lab/tablero/pkg/domain/model/auth"
)

// Errors every repository backend wraps
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
	// ErrUnconfirmed means a write was applied but reading it back failed
	ErrUnconfirmed = errors.New("write applied but not read back")
)

// Repository defines the interface for data persistence
type Repository interface {
	Ticket() TicketRepository
	ContentItem() ContentItemRepository
	Material() MaterialRepository
	TalkSlide() TalkSlideRepository
	Analytics() AnalyticsRepository
	User() UserRepository

	// Auth methods
	PutToken(ctx context.Context, token *auth.Token) error
	GetToken(ctx context.Context, tokenID auth.TokenID) (*auth.Token, error)
	DeleteToken(ctx context.Context, tokenID auth.TokenID) error

	Close() error
}
