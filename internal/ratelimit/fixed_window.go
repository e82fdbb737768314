// Package ratelimit caps per-user request rates with Redis counters.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// INCR and PEXPIRE run as one script so a counter never outlives its window.
const fixedWindowSource = `
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`

var fixedWindowScript = redis.NewScript(fixedWindowSource)

// FixedWindowLimiter counts requests per key in fixed windows. Every process
// sharing the Redis instance shares the same counters.
type FixedWindowLimiter struct {
	redis  redis.Cmdable
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewFixedWindowLimiter(rdb redis.Cmdable, prefix string, limit int, window time.Duration) (*FixedWindowLimiter, error) {
	if rdb == nil {
		return nil, errors.New("rate limiter requires a redis client")
	}
	if limit <= 0 || window <= 0 {
		return nil, errors.New("rate limiter requires positive limit and window")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "smartstore:ratelimit"
	}
	return &FixedWindowLimiter{
		redis:  rdb,
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Allow counts one request for key and reports whether it is within quota.
// A Redis failure is returned together with false; callers fail closed.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}
	redisKey := l.keyFor(key)

	count, err := fixedWindowScript.Run(ctx, l.redis, []string{redisKey}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limit script: %w", err)
	}
	return count <= int64(l.limit), nil
}

func (l *FixedWindowLimiter) keyFor(key string) string {
	slot := l.now().UnixMilli() / l.window.Milliseconds()
	return fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)
}
