package memcache

import (
	"context"
	"sync"
	"time"

	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SearchLimiter = (*SearchLimiter)(nil)

// SearchLimiter enforces a sliding one-minute window over search attempts,
// shared process-wide. Denied attempts are not recorded, so a burst of
// rejected calls does not extend the lockout.
type SearchLimiter struct {
	mu       sync.Mutex
	limit    int
	attempts []time.Time

	// now is swappable in tests
	now func() time.Time
}

// NewSearchLimiter creates a limiter allowing limit requests per minute
func NewSearchLimiter(limit int) *SearchLimiter {
	return &SearchLimiter{
		limit: limit,
		now:   time.Now,
	}
}

// Allow reports whether another request fits in the current window and
// records it if so
func (l *SearchLimiter) Allow(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-time.Minute)

	kept := l.attempts[:0]
	for _, t := range l.attempts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.attempts = kept

	if len(l.attempts) >= l.limit {
		return false, nil
	}
	l.attempts = append(l.attempts, now)
	return true, nil
}
