package document

import (
	"context"
	"log"
	"sync"
)

// SummaryStore is the persistent lookup behind the cache. Implementations
// live in internal/repository; writes are idempotent upserts, so concurrent
// misses for the same key may duplicate work but never corrupt state.
type SummaryStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, summary string) error
}

// CacheKey builds the store key for a (record, document) pair.
func CacheKey(noticeID, url string) string {
	return "doc_summary:" + noticeID + "::" + url
}

// Cache wraps the Processor with a persistent summary lookup. Each document
// is fetched and summarized at most once per key under normal operation.
type Cache struct {
	store     SummaryStore
	processor *Processor
}

func NewCache(store SummaryStore, processor *Processor) *Cache {
	return &Cache{
		store:     store,
		processor: processor,
	}
}

// GetOrCompute returns the cached summary for (noticeID, url) without any
// network activity, or runs the processor on a miss. Only successful results
// are written back; unsupported and failed jobs stay uncached so a later
// attempt can retry them.
func (c *Cache) GetOrCompute(ctx context.Context, noticeID, url string) JobResult {
	key := CacheKey(noticeID, url)

	if summary, found, err := c.store.Get(ctx, key); err != nil {
		log.Printf("[WARN] summary cache read failed for %s: %v", key, err)
	} else if found {
		return JobResult{
			URL:     url,
			Summary: summary,
			Status:  JobSuccess,
		}
	}

	result := c.processor.Process(ctx, url)

	if result.Status == JobSuccess {
		if err := c.store.Set(ctx, key, result.Summary); err != nil {
			// The summary is still good; only the next computation is wasted.
			log.Printf("[WARN] summary cache write failed for %s: %v", key, err)
		}
	}

	return result
}

// ProgressFunc fires once per settled job, in completion order, with the
// running count of jobs settled so far.
type ProgressFunc func(settled int, result JobResult)

// ProcessAll fans out one job per URL and collects results as they settle.
// Jobs run concurrently and settle independently; the progress callback is
// invoked serially from the collector. The returned slice is in completion
// order; callers that need URL alignment have each result's URL field.
func (c *Cache) ProcessAll(ctx context.Context, noticeID string, urls []string, progress ProgressFunc) []JobResult {
	if len(urls) == 0 {
		return nil
	}

	resultCh := make(chan JobResult, len(urls))

	var wg sync.WaitGroup
	for _, url := range urls {
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			resultCh <- c.GetOrCompute(ctx, noticeID, url)
		}(url)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]JobResult, 0, len(urls))
	for result := range resultCh {
		results = append(results, result)
		if progress != nil {
			progress(len(results), result)
		}
	}

	return results
}
