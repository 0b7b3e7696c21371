package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/ParcelBox/config"
	"github.com/BearBump/ParcelBox/internal/bootstrap"
	"github.com/BearBump/ParcelBox/internal/broker/kafka"
	"github.com/BearBump/ParcelBox/internal/metrics"
	"github.com/BearBump/ParcelBox/internal/services/parcels"
)

type parcelAPIApp struct {
	ctx      context.Context
	cancel   context.CancelFunc
	opts     parcelAPIOpts
	svc      *parcels.Service
	metrics  *metrics.Metrics
	consumer statusConsumer
	closers  []func()
}

func mustBootstrapParcelAPI() *parcelAPIApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	app, err := newParcelAPIApp(cfg)
	if err != nil {
		panic(err)
	}
	return app
}

func newParcelAPIApp(cfg *config.Config) (*parcelAPIApp, error) {
	httpAddr := cfg.ParcelBox.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	consumerGroup := cfg.ParcelBox.KafkaConsumerGroup
	if consumerGroup == "" {
		consumerGroup = "parcel-api"
	}
	topic := bootstrap.StatusChangedTopic(cfg)

	app := &parcelAPIApp{}

	st, err := bootstrap.OpenStorage(cfg, 60*time.Second)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, st.Close)

	c, closeCache, err := bootstrap.NewCache(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.closers = append(app.closers, closeCache)

	reg, err := bootstrap.NewRegistry(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	zone, err := bootstrap.Zone(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.metrics = metrics.New()
	app.svc = parcels.New(st, reg, c, bootstrap.CacheTTL(cfg), app.metrics).WithZone(zone)

	// Без кэша событий ждать незачем: инвалидировать нечего.
	if c != nil && cfg.Kafka.Host != "" {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers(), topic, consumerGroup)
		app.consumer = consumer
		app.closers = append(app.closers, func() { _ = consumer.Close() })
	} else {
		slog.Info("status change consumer disabled")
	}

	app.ctx, app.cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	app.opts = parcelAPIOpts{
		httpAddr:      httpAddr,
		topic:         topic,
		consumerGroup: consumerGroup,
	}
	return app, nil
}

func (a *parcelAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *parcelAPIApp) Run() error {
	return runParcelAPI(a.ctx, a.opts, a.svc, a.metrics, a.consumer)
}
