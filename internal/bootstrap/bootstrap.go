// Package bootstrap собирает зависимости процессов parcel-api и parcel-worker из конфига.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BearBump/ParcelBox/config"
	"github.com/BearBump/ParcelBox/internal/cache"
	"github.com/BearBump/ParcelBox/internal/cache/memcache"
	"github.com/BearBump/ParcelBox/internal/cache/rediscache"
	"github.com/BearBump/ParcelBox/internal/credentials"
	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/integrations/carriers"
	"github.com/BearBump/ParcelBox/internal/services/parcels"
	"github.com/BearBump/ParcelBox/internal/services/sweep"
	"github.com/BearBump/ParcelBox/internal/storage/pgparcels"
	"github.com/BearBump/ParcelBox/internal/storage/sqliteparcels"
	"github.com/pkg/errors"
)

const (
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"

	CacheRedis  = "redis"
	CacheMemory = "memory"
	CacheNone   = "none"
)

// Store is implemented by both pgparcels and sqliteparcels.
type Store interface {
	parcels.Repository
	sweep.Repository
	Ping(ctx context.Context) error
	Close()
}

var (
	_ Store = (*pgparcels.Storage)(nil)
	_ Store = (*sqliteparcels.Storage)(nil)
)

// OpenStorage: postgres ждёт готовности базы до wait, sqlite открывается сразу.
func OpenStorage(cfg *config.Config, wait time.Duration) (Store, error) {
	kind := strings.ToLower(strings.TrimSpace(cfg.ParcelBox.Storage))
	switch kind {
	case "", StorageSQLite:
		st, err := sqliteparcels.New(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return st, nil
	case StoragePostgres:
		return openPostgresWithRetry(cfg.Database.ConnString(), wait)
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.ParcelBox.Storage)
	}
}

func openPostgresWithRetry(connString string, wait time.Duration) (*pgparcels.Storage, error) {
	deadline := time.Now().Add(wait)
	var lastErr error
	for {
		st, err := pgparcels.New(connString)
		if err == nil {
			return st, nil
		}
		lastErr = err
		if !time.Now().Before(deadline) {
			break
		}
		slog.Warn("postgres is not ready, retrying", "err", err)
		time.Sleep(1 * time.Second)
	}
	return nil, errors.Wrapf(lastErr, "postgres is not ready after %s", wait)
}

// NewCache returns nil for "none"; closeFn is never nil.
func NewCache(cfg *config.Config) (cache.BytesCache, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.ParcelBox.Cache)) {
	case "", CacheMemory:
		return memcache.New(CacheTTL(cfg), time.Minute), func() {}, nil
	case CacheRedis:
		rc := rediscache.New(cfg.Redis.Addr())
		return rc, func() { _ = rc.Close() }, nil
	case CacheNone:
		return nil, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache %q", cfg.ParcelBox.Cache)
	}
}

// NewRateLimiter follows the cache backend: redis when configured, in-process otherwise.
func NewRateLimiter(cfg *config.Config) (cache.RateLimiter, func()) {
	if strings.EqualFold(strings.TrimSpace(cfg.ParcelBox.Cache), CacheRedis) {
		rl := rediscache.NewRateLimiter(cfg.Redis.Addr())
		return rl, func() { _ = rl.Close() }
	}
	return memcache.NewRateLimiter(), func() {}
}

func CacheTTL(cfg *config.Config) time.Duration {
	ttl := time.Duration(cfg.ParcelBox.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return ttl
}

func Zone(cfg *config.Config) (*time.Location, error) {
	name := strings.TrimSpace(cfg.ParcelBox.Timezone)
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.Wrapf(err, "load timezone %q", name)
	}
	return loc, nil
}

func NewRegistry(cfg *config.Config) (*carrier.Registry, error) {
	zone, err := Zone(cfg)
	if err != nil {
		return nil, err
	}
	creds := credentials.NewStatic(cfg.ParcelBox.APIKeys)
	slog.Info("carrier credentials loaded", "carriers", creds.Configured())

	timeout := time.Duration(cfg.ParcelBox.HTTPTimeoutSeconds) * time.Second
	return carriers.Default(carriers.Config{
		Options: carrier.Options{
			HTTPClient:  carrier.NewHTTPClient(timeout),
			Credentials: creds,
			Zone:        zone,
			Language:    cfg.ParcelBox.Language,
		},
		BaseURLs:         cfg.ParcelBox.CarrierBaseURLs,
		Track24Domain:    cfg.ParcelBox.Track24Domain,
		EmulatorUpstream: cfg.ParcelBox.EmulatorUpstream,
	}), nil
}

func NewPlanner(cfg *config.Config) *sweep.Planner {
	sec := func(n int) time.Duration { return time.Duration(n) * time.Second }
	return sweep.NewPlanner(sweep.PlannerConfig{
		FinalDelay:     sec(cfg.ParcelBox.SweepNextCheckFinalSeconds),
		ActiveMinDelay: sec(cfg.ParcelBox.SweepNextCheckActiveMinSeconds),
		ActiveMaxDelay: sec(cfg.ParcelBox.SweepNextCheckActiveMaxSeconds),
		UnknownDelay:   sec(cfg.ParcelBox.SweepNextCheckUnknownSeconds),
	}, nil)
}

func StatusChangedTopic(cfg *config.Config) string {
	if cfg.Kafka.StatusChangedTopicName == "" {
		return "parcel.status_changed"
	}
	return cfg.Kafka.StatusChangedTopicName
}
