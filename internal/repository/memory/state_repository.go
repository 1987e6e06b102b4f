// Package memory provides in-process repository implementations used when no
// external store is configured, and as test doubles.
package memory

import (
	"context"
	"sync"

	"github.com/mapdata-service/internal/domain/repository"
)

type stateRepository struct {
	mu    sync.RWMutex
	lists map[string][]string
}

func NewStateRepository() repository.StateRepository {
	return &stateRepository{lists: make(map[string][]string)}
}

func (r *stateRepository) GetList(_ context.Context, key string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	values := r.lists[key]
	out := make([]string, len(values))
	copy(out, values)
	return out, nil
}

func (r *stateRepository) SetList(_ context.Context, key string, values []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]string, len(values))
	copy(stored, values)
	r.lists[key] = stored
	return nil
}
