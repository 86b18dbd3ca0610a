package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/parlance-labs/recall-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SearchLimiter = (*SearchLimiter)(nil)

const limiterKey = "recall:search:window"

// allowScript trims the window, checks the limit, and records the attempt
// in one atomic step. KEYS[1] is the window zset; ARGV[1] the cutoff,
// ARGV[2] the limit, ARGV[3] the member to add, ARGV[4] the score.
var allowScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
local count = redis.call('ZCARD', KEYS[1])
if count >= tonumber(ARGV[2]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[4], ARGV[3])
redis.call('EXPIRE', KEYS[1], 120)
return 1
`)

// SearchLimiter implements driven.SearchLimiter on a Redis sorted set,
// enforcing the sliding one-minute window across instances.
type SearchLimiter struct {
	client *redis.Client
	limit  int
}

// NewSearchLimiter creates a limiter allowing limit requests per minute
func NewSearchLimiter(client *redis.Client, limit int) *SearchLimiter {
	return &SearchLimiter{client: client, limit: limit}
}

// Allow reports whether another request fits in the current window and
// records it if so
func (l *SearchLimiter) Allow(ctx context.Context) (bool, error) {
	now := time.Now().UnixNano()
	cutoff := now - int64(time.Minute)
	member := strconv.FormatInt(now, 10)

	res, err := allowScript.Run(ctx, l.client, []string{limiterKey},
		cutoff, l.limit, member, now,
	).Int()
	if err != nil {
		return false, fmt.Errorf("search limiter: %w", err)
	}
	return res == 1, nil
}
