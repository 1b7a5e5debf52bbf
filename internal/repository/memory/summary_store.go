package memory

import (
	"context"

	"github.com/patrickmn/go-cache"

	"contract-assistant-be/pkg/document"
)

// SummaryStore keeps document summaries in process memory. Summaries
// never expire while the process lives; the cache is write-once.
type SummaryStore struct {
	cache *cache.Cache
}

func NewSummaryStore() *SummaryStore {
	return &SummaryStore{cache: cache.New(cache.NoExpiration, 0)}
}

var _ document.SummaryStore = (*SummaryStore)(nil)

func (s *SummaryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if x, found := s.cache.Get(key); found {
		return x.(string), true, nil
	}
	return "", false, nil
}

func (s *SummaryStore) Set(ctx context.Context, key, summary string) error {
	s.cache.Set(key, summary, cache.NoExpiration)
	return nil
}
