package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	parcelsapi "github.com/BearBump/ParcelBox/internal/api/parcels_api"
	"github.com/BearBump/ParcelBox/internal/broker/messages"
	"github.com/BearBump/ParcelBox/internal/metrics"
	"github.com/BearBump/ParcelBox/internal/services/parcels"
)

type parcelAPIOpts struct {
	httpAddr string

	topic         string
	consumerGroup string

	onListen func(httpAddr string)
}

type statusConsumer interface {
	ConsumeStatusChanges(ctx context.Context, handler func(ctx context.Context, m messages.ParcelStatusChanged) error) error
}

// runParcelAPI: consumer может быть nil, тогда кэш живёт только по TTL.
func runParcelAPI(ctx context.Context, opts parcelAPIOpts, svc *parcels.Service, m *metrics.Metrics, consumer statusConsumer) error {
	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runHTTPServer(ctx, lis, parcelsapi.New(svc, m).Routes())
	}()

	if consumer != nil {
		go func() {
			slog.Info("kafka consumer started", "topic", opts.topic, "group", opts.consumerGroup)
			err := consumer.ConsumeStatusChanges(ctx, svc.ApplyStatusChange)
			if err != nil && ctx.Err() == nil {
				slog.Error("kafka consumer stopped", "err", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		<-httpErr
		return ctx.Err()
	case err := <-httpErr:
		if err == nil {
			return ctx.Err()
		}
		return err
	}
}

func runHTTPServer(ctx context.Context, lis net.Listener, h http.Handler) error {
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("HTTP server listening", "addr", lis.Addr().String())
	if err := srv.Serve(lis); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
