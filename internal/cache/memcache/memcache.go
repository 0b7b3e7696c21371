// Package memcache — in-process кэш для одиночного запуска без redis.
package memcache

import (
	"context"
	"sync"
	"time"

	"github.com/BearBump/ParcelBox/internal/cache"
	gocache "github.com/patrickmn/go-cache"
)

type MemCache struct {
	c *gocache.Cache
}

var _ cache.BytesCache = (*MemCache)(nil)

func New(defaultTTL, cleanupInterval time.Duration) *MemCache {
	return &MemCache{c: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *MemCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}
	// вызывающий может менять срез
	out := make([]byte, len(b))
	copy(out, b)
	return out, true, nil
}

func (m *MemCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	b := make([]byte, len(value))
	copy(b, value)
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	m.c.Set(key, b, ttl)
	return nil
}

func (m *MemCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.c.Delete(k)
	}
	return nil
}

// RateLimiter is the in-process counterpart of rediscache.RateLimiter.
type RateLimiter struct {
	mu sync.Mutex
	c  *gocache.Cache
}

var _ cache.RateLimiter = (*RateLimiter)(nil)

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{c: gocache.New(gocache.NoExpiration, time.Minute)}
}

func (rl *RateLimiter) Allow(_ context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if err := rl.c.Add(key, int64(1), window); err == nil {
		return 1 <= limit, 1, nil
	}
	n, err := rl.c.IncrementInt64(key, 1)
	if err != nil {
		// ключ успел протухнуть между Add и Increment
		rl.c.Set(key, int64(1), window)
		return 1 <= limit, 1, nil
	}
	return n <= limit, n, nil
}
