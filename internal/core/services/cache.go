package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/parlance-labs/recall-core/internal/core/domain"
)

// RetrievalCache is a keyed read-through cache in front of the dual-scope
// retriever. It is an explicitly constructed component with a controlled
// lifetime: built once at startup and handed to the context service, never a
// hidden global. Entries expire lazily; expired entries are treated as
// absent, not evicted. Concurrent turns may race on the same key; duplicate
// computation is acceptable and the last write wins.
type RetrievalCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry

	// now is swappable in tests
	now func() time.Time
}

type cacheEntry struct {
	insertedAt time.Time
	chunks     []domain.Chunk
}

// NewRetrievalCache creates a cache with the given TTL
func NewRetrievalCache(ttl time.Duration) *RetrievalCache {
	return &RetrievalCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// GetOrCompute returns the cached result for key while it is live, otherwise
// invokes compute synchronously, stores the result with the current
// timestamp, and returns it. Empty results are cached like any other.
func (c *RetrievalCache) GetOrCompute(key string, compute func() []domain.Chunk) []domain.Chunk {
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && c.now().Sub(entry.insertedAt) <= c.ttl {
		chunks := entry.chunks
		c.mu.Unlock()
		return chunks
	}
	c.mu.Unlock()

	// Computed outside the lock: a slow retrieval must not block unrelated
	// keys, and at-least-once recomputation on a race is acceptable.
	chunks := compute()

	c.mu.Lock()
	c.entries[key] = cacheEntry{insertedAt: c.now(), chunks: chunks}
	c.mu.Unlock()
	return chunks
}

// Len returns the number of stored entries, live or expired
func (c *RetrievalCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// retrievalCacheKey builds the canonical cache key from session, query, and
// the sorted source allow-list
func retrievalCacheKey(sessionID, query string, sources []domain.SourceType) string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = string(s)
	}
	sort.Strings(names)
	return sessionID + "\x1f" + query + "\x1f" + strings.Join(names, ",")
}
