package main

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/BearBump/ParcelBox/config"
	"github.com/BearBump/ParcelBox/internal/bootstrap"
	"github.com/BearBump/ParcelBox/internal/broker/kafka"
	"github.com/BearBump/ParcelBox/internal/cache"
	"github.com/BearBump/ParcelBox/internal/metrics"
	"github.com/BearBump/ParcelBox/internal/services/parcels"
	"github.com/BearBump/ParcelBox/internal/services/sweep"
)

type workerFactories struct {
	newStorage     func(cfg *config.Config) (bootstrap.Store, error)
	newCache       func(cfg *config.Config) (cache.BytesCache, func(), error)
	newProducer    func(cfg *config.Config) (sweep.Producer, func())
	newRateLimiter func(cfg *config.Config) (cache.RateLimiter, func())
	newCarriers    func(cfg *config.Config) (parcels.Carriers, error)
}

func defaultWorkerFactories() workerFactories {
	return workerFactories{
		newStorage: func(cfg *config.Config) (bootstrap.Store, error) {
			return bootstrap.OpenStorage(cfg, 60*time.Second)
		},
		newCache: bootstrap.NewCache,
		newProducer: func(cfg *config.Config) (sweep.Producer, func()) {
			// без kafka обход всё равно обновляет снимки, просто не публикует события
			if cfg.Kafka.Host == "" {
				return nil, func() {}
			}
			p := kafka.NewProducer(cfg.Kafka.Brokers())
			return p, func() { _ = p.Close() }
		},
		newRateLimiter: bootstrap.NewRateLimiter,
		newCarriers: func(cfg *config.Config) (parcels.Carriers, error) {
			return bootstrap.NewRegistry(cfg)
		},
	}
}

func newSweeper(cfg *config.Config, repo sweep.Repository, refresher sweep.Refresher, producer sweep.Producer, rl cache.RateLimiter, m *metrics.Metrics) *sweep.Sweeper {
	interval := time.Duration(cfg.ParcelBox.SweepIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	batchSize := cfg.ParcelBox.SweepBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	concurrency := cfg.ParcelBox.SweepConcurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	lease := time.Duration(cfg.ParcelBox.SweepLeaseSeconds) * time.Second
	if lease <= 0 {
		lease = 120 * time.Second
	}
	rlPerMin := int64(cfg.ParcelBox.SweepRateLimitPerMinute)
	if rlPerMin <= 0 {
		rlPerMin = 60
	}

	return sweep.New(repo, refresher, producer, rl, bootstrap.StatusChangedTopic(cfg), m).
		WithSettings(interval, batchSize, concurrency, lease, rlPerMin).
		WithCarrierRateLimits(cfg.ParcelBox.CarrierRateLimits).
		WithPlanner(bootstrap.NewPlanner(cfg))
}

// RunParcelWorker runs the sweep loop and the worker HTTP server until ctx is done.
func RunParcelWorker(ctx context.Context, cfg *config.Config, f workerFactories, onListen func(httpAddr string)) error {
	st, err := f.newStorage(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	c, closeCache, err := f.newCache(cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	carriers, err := f.newCarriers(cfg)
	if err != nil {
		return err
	}
	zone, err := bootstrap.Zone(cfg)
	if err != nil {
		return err
	}

	producer, closeProducer := f.newProducer(cfg)
	defer closeProducer()
	rl, closeRL := f.newRateLimiter(cfg)
	defer closeRL()

	m := metrics.New()
	svc := parcels.New(st, carriers, c, bootstrap.CacheTTL(cfg), m).WithZone(zone)
	sw := newSweeper(cfg, st, svc, producer, rl, m)

	httpAddr := cfg.ParcelBox.WorkerHTTPAddr
	if httpAddr == "" {
		httpAddr = ":8082"
	}
	lis, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return err
	}
	if onListen != nil {
		onListen(lis.Addr().String())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runWorkerHTTPServer(ctx, lis, workerHTTPOpts{
			sweeper: sw,
			store:   st,
			metrics: m,
			cfg:     cfg,
		})
	}()

	sweepErr := make(chan error, 1)
	go func() {
		slog.Info("sweep started", "topic", bootstrap.StatusChangedTopic(cfg))
		sweepErr <- sw.Run(ctx)
	}()

	select {
	case err = <-sweepErr:
		cancel()
		<-httpErr
	case err = <-httpErr:
		cancel()
		<-sweepErr
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}
