package rediscache

import (
	"context"
	"time"

	"github.com/BearBump/ParcelBox/internal/cache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RateLimiter — фиксированное окно на redis, общее для всех воркеров обхода.
type RateLimiter struct {
	c *redis.Client
}

var _ cache.RateLimiter = (*RateLimiter)(nil)

func NewRateLimiter(addr string) *RateLimiter {
	return &RateLimiter{
		c: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// Allow increments key and reports (allowed, count).
// TTL ставится только новому ключу (EXPIRE NX): повторные вызовы окно не продлевают.
func (rl *RateLimiter) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	pipe := rl.c.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, errors.Wrapf(err, "redis ratelimit %s", key)
	}
	n := incr.Val()
	return n <= limit, n, nil
}

func (rl *RateLimiter) Close() error {
	return rl.c.Close()
}
