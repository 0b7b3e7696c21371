// Package cache описывает байтовый кэш ответов перевозчиков.
package cache

import (
	"context"
	"time"
)

// BytesCache is implemented by rediscache and memcache.
// A miss is (nil, false, nil), not an error.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// RateLimiter is a fixed-window counter: Allow increments key and reports whether it is still within limit.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}
