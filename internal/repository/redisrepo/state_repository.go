package redisrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"contract-assistant-be/internal/repository/contract"
)

const stateKeyPrefix = "assistant_state:"

// StateRepository persists serialized snapshots in Redis so state
// survives restarts and is shared across instances.
type StateRepository struct {
	rdb *redis.Client
}

func NewStateRepository(rdb *redis.Client) *StateRepository {
	return &StateRepository{rdb: rdb}
}

var _ contract.StateRepository = (*StateRepository)(nil)

func (r *StateRepository) Get(ctx context.Context, clientId string) ([]byte, bool, error) {
	data, err := r.rdb.Get(ctx, stateKeyPrefix+clientId).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get state: %w", err)
	}
	return data, true, nil
}

func (r *StateRepository) Save(ctx context.Context, clientId string, data []byte) error {
	if err := r.rdb.Set(ctx, stateKeyPrefix+clientId, data, 0).Err(); err != nil {
		return fmt.Errorf("redis save state: %w", err)
	}
	return nil
}

func (r *StateRepository) Delete(ctx context.Context, clientId string) error {
	if err := r.rdb.Del(ctx, stateKeyPrefix+clientId).Err(); err != nil {
		return fmt.Errorf("redis delete state: %w", err)
	}
	return nil
}
