package memory

import (
	"context"
	"time"

	"contract-assistant-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// StateRepository keeps serialized snapshots in process memory. Used
// when no Redis is configured; state does not survive a restart.
type StateRepository struct {
	cache *cache.Cache
}

func NewStateRepository() *StateRepository {
	// Snapshots idle for a day are dropped.
	c := cache.New(24*time.Hour, 1*time.Hour)
	return &StateRepository{cache: c}
}

var _ contract.StateRepository = (*StateRepository)(nil)

func (r *StateRepository) Get(ctx context.Context, clientId string) ([]byte, bool, error) {
	if x, found := r.cache.Get(clientId); found {
		return x.([]byte), true, nil
	}
	return nil, false, nil
}

func (r *StateRepository) Save(ctx context.Context, clientId string, data []byte) error {
	r.cache.Set(clientId, data, cache.DefaultExpiration)
	return nil
}

func (r *StateRepository) Delete(ctx context.Context, clientId string) error {
	r.cache.Delete(clientId)
	return nil
}
