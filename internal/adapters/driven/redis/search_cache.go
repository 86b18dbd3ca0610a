package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/parlance-labs/recall-core/internal/core/domain"
	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SearchCache = (*SearchCache)(nil)

const searchCachePrefix = "recall:search:"

// SearchCache implements driven.SearchCache on Redis, for deployments
// where more than one instance shares the search quota. Entries expire
// through Redis TTLs.
type SearchCache struct {
	client *redis.Client
}

// NewSearchCache creates a new Redis-backed SearchCache
func NewSearchCache(client *redis.Client) *SearchCache {
	return &SearchCache{client: client}
}

// Get returns cached results and whether a live entry exists
func (c *SearchCache) Get(ctx context.Context, query string) ([]domain.WebSearchResult, bool, error) {
	raw, err := c.client.Get(ctx, searchCachePrefix+query).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("search cache get: %w", err)
	}

	var results []domain.WebSearchResult
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		return nil, false, fmt.Errorf("search cache decode: %w", err)
	}
	return results, true, nil
}

// Put stores results for query with the given TTL
func (c *SearchCache) Put(ctx context.Context, query string, results []domain.WebSearchResult, ttl time.Duration) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("search cache encode: %w", err)
	}
	if err := c.client.Set(ctx, searchCachePrefix+query, raw, ttl).Err(); err != nil {
		return fmt.Errorf("search cache put: %w", err)
	}
	return nil
}
