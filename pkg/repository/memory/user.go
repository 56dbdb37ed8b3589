package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/tablero/pkg/domain/model"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

func newUserRepository() *userRepository {
	return &userRepository{
		users: make(map[string]*model.User),
	}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, goerr.Wrap(ErrConflict, "email already registered", goerr.V("email", user.Email))
		}
	}

	created := *user
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	r.users[created.ID] = &created

	result := created
	return &result, nil
}

func (r *userRepository) Get(ctx context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, exists := r.users[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
	}
	c := *u
	return &c, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("email", email))
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		c := *u
		users = append(users, &c)
	}
	slices.SortFunc(users, func(a, b *model.User) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return users, nil
}
