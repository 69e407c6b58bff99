package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLimiter is a fixed-window counter backed by Redis, for deployments
// running more than one assistant instance. INCR is atomic per key, and the
// expiry set on the first increment starts the window.
type RedisLimiter struct {
	client    *redis.Client
	limit     int64
	windowLen time.Duration
	prefix    string
	logger    *zap.Logger
}

// NewRedisLimiter creates a Redis-backed limiter against the given address.
func NewRedisLimiter(addr string, limit int, windowLen time.Duration, logger *zap.Logger) *RedisLimiter {
	if limit <= 0 {
		limit = 10
	}
	if windowLen <= 0 {
		windowLen = time.Minute
	}
	return &RedisLimiter{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
		limit:     int64(limit),
		windowLen: windowLen,
		prefix:    "rag_rate_limit:",
		logger:    logger,
	}
}

// Allow reports whether identity may proceed. A Redis failure allows the
// request: losing limiter state only resets limits, it never blocks traffic.
func (l *RedisLimiter) Allow(ctx context.Context, identity string) bool {
	if identity == "" {
		identity = anonymousIdentity
	}
	key := fmt.Sprintf("%s%s", l.prefix, identity)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, l.windowLen)
	if _, err := pipe.Exec(ctx); err != nil {
		l.logger.Warn("rate limiter unavailable, allowing request", zap.Error(err))
		return true
	}

	return incr.Val() <= l.limit
}

// Close releases the Redis connection.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
