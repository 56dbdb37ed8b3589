package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/m-mizutani/goerr/v2"
)

type analyticsRepository struct {
	mu    sync.RWMutex
	views map[string][]byte
}

func newAnalyticsRepository() *analyticsRepository {
	return &analyticsRepository{
		views: make(map[string][]byte),
	}
}

func (r *analyticsRepository) LoadView(ctx context.Context, name string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, exists := r.views[name]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "view not found", goerr.V("view", name))
	}
	return append([]byte(nil), rows...), nil
}

func (r *analyticsRepository) PutView(ctx context.Context, name string, rows []byte) error {
	if !json.Valid(rows) {
		return goerr.New("view rows are not valid JSON", goerr.V("view", name))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.views[name] = append([]byte(nil), rows...)
	return nil
}
