package memcache

import (
	"context"
	"sync"
	"time"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SearchCache = (*SearchCache)(nil)

// SearchCache is an in-process SearchCache for single-node deployments.
// Entries expire lazily on read.
type SearchCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry

	// now is swappable in tests
	now func() time.Time
}

type cacheEntry struct {
	results   []domain.WebSearchResult
	expiresAt time.Time
}

// NewSearchCache creates a new SearchCache
func NewSearchCache() *SearchCache {
	return &SearchCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns cached results and whether a live entry exists
func (c *SearchCache) Get(ctx context.Context, query string) ([]domain.WebSearchResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[query]
	if !ok {
		return nil, false, nil
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, query)
		return nil, false, nil
	}
	return entry.results, true, nil
}

// Put stores results for query with the given TTL
func (c *SearchCache) Put(ctx context.Context, query string, results []domain.WebSearchResult, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[query] = cacheEntry{
		results:   results,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}
