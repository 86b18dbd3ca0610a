package driven

import (
	"context"
	"time"

	"github.com/parlance-labs/recall-core/internal/core/domain"
)

// WebSearchProvider performs a web search against an external API
type WebSearchProvider interface {
	// Search returns up to 10 results for query. Implementations return an
	// error on transport or parse failure; the augmenter degrades to empty.
	Search(ctx context.Context, query string) ([]domain.WebSearchResult, error)

	// Name identifies the provider in debug output
	Name() string
}

// SearchCache caches web search results per query with lazy TTL expiry
type SearchCache interface {
	// Get returns cached results and whether a live entry exists
	Get(ctx context.Context, query string) ([]domain.WebSearchResult, bool, error)

	// Put stores results for query with the given TTL. Empty result sets
	// are cached like any other.
	Put(ctx context.Context, query string, results []domain.WebSearchResult, ttl time.Duration) error
}

// SearchLimiter enforces a sliding one-minute request window shared
// process-wide. Allow must be atomic with respect to concurrent callers.
type SearchLimiter interface {
	// Allow records an attempt and reports whether it is within the limit
	Allow(ctx context.Context) (bool, error)
}
