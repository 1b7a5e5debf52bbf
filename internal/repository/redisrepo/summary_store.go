package redisrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"contract-assistant-be/pkg/document"
)

// SummaryStore keeps document summaries in Redis. Entries are never
// invalidated: notices are immutable once published, so a summary stays
// correct for the life of the key.
type SummaryStore struct {
	rdb *redis.Client
}

func NewSummaryStore(rdb *redis.Client) *SummaryStore {
	return &SummaryStore{rdb: rdb}
}

var _ document.SummaryStore = (*SummaryStore)(nil)

func (s *SummaryStore) Get(ctx context.Context, key string) (string, bool, error) {
	summary, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get summary: %w", err)
	}
	return summary, true, nil
}

func (s *SummaryStore) Set(ctx context.Context, key, summary string) error {
	if err := s.rdb.Set(ctx, key, summary, 0).Err(); err != nil {
		return fmt.Errorf("redis set summary: %w", err)
	}
	return nil
}
