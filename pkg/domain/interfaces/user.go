package interfaces

import (
	"context"

	"github.com/secmon-lab/tablero/pkg/domain/model"
)

// UserRepository stores hub users
type UserRepository interface {
	// Create fails with ErrConflict when the email is taken
	Create(ctx context.Context, user *model.User) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
}
