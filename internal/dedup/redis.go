package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindowScript trims entries at or before now-window, then admits
// the call if fewer than max entries remain.
//
// KEYS[1] window key
// ARGV[1] now (ms), ARGV[2] window (ms), ARGV[3] max, ARGV[4] member
const slidingWindowScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
if redis.call('ZCARD', key) >= limit then
	return 0
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return 1
`

// RedisGuard shares windows across evaluator instances through Redis
// sorted sets scored by creation time.
type RedisGuard struct {
	client redis.UniversalClient
	script *redis.Script
	window time.Duration
	max    int
	now    func() time.Time
	prefix string
}

// RedisOption configures a RedisGuard.
type RedisOption func(*RedisGuard)

// WithRedisClock overrides the time source.
func WithRedisClock(now func() time.Time) RedisOption {
	return func(g *RedisGuard) {
		g.now = now
	}
}

// WithKeyPrefix namespaces the keys written to Redis.
func WithKeyPrefix(prefix string) RedisOption {
	return func(g *RedisGuard) {
		g.prefix = prefix
	}
}

// NewRedisGuard creates a guard allowing maxCount creations per window.
func NewRedisGuard(client redis.UniversalClient, window time.Duration, maxCount int, opts ...RedisOption) *RedisGuard {
	g := &RedisGuard{
		client: client,
		script: redis.NewScript(slidingWindowScript),
		window: window,
		max:    max(maxCount, 1),
		now:    time.Now,
		prefix: "pad:",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Allow implements Guard.
func (g *RedisGuard) Allow(ctx context.Context, key Key) (bool, error) {
	res, err := g.script.Run(ctx, g.client,
		[]string{g.prefix + key.String()},
		g.now().UnixMilli(),
		g.window.Milliseconds(),
		g.max,
		uuid.NewString(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("running dedup script for %s: %w", key, err)
	}
	return res == 1, nil
}
