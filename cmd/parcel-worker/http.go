package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/BearBump/ParcelBox/config"
	"github.com/BearBump/ParcelBox/internal/metrics"
	"github.com/BearBump/ParcelBox/internal/services/sweep"
	"github.com/go-chi/chi/v5"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type workerHTTPOpts struct {
	sweeper *sweep.Sweeper
	store   pinger
	metrics *metrics.Metrics
	cfg     *config.Config
}

func workerRoutes(opts workerHTTPOpts) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if opts.store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := opts.store.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "not ready", "error": err.Error()})
				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	r.Handle("/metrics", opts.metrics.Handler())

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if opts.sweeper == nil {
			_, _ = w.Write([]byte(`{"error":"sweeper not wired"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(opts.sweeper.Stats())
	})

	r.Get("/config", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if opts.cfg == nil {
			_, _ = w.Write([]byte(`{"error":"config not wired"}`))
			return
		}
		// ключи API не отдаём, только рабочие настройки обхода
		pb := opts.cfg.ParcelBox
		out := map[string]any{
			"storage":                   pb.Storage,
			"cache":                     pb.Cache,
			"intervalSeconds":           pb.SweepIntervalSeconds,
			"batchSize":                 pb.SweepBatchSize,
			"concurrency":               pb.SweepConcurrency,
			"leaseSeconds":              pb.SweepLeaseSeconds,
			"rateLimitPerMinute":        pb.SweepRateLimitPerMinute,
			"carrierRateLimits":         pb.CarrierRateLimits,
			"nextCheckActiveMinSeconds": pb.SweepNextCheckActiveMinSeconds,
			"nextCheckActiveMaxSeconds": pb.SweepNextCheckActiveMaxSeconds,
			"nextCheckUnknownSeconds":   pb.SweepNextCheckUnknownSeconds,
			"nextCheckFinalSeconds":     pb.SweepNextCheckFinalSeconds,
			"statusChangedTopic":        opts.cfg.Kafka.StatusChangedTopicName,
		}
		_ = json.NewEncoder(w).Encode(out)
	})

	r.Post("/trigger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if opts.sweeper == nil {
			_, _ = w.Write([]byte(`{"error":"sweeper not wired"}`))
			return
		}
		opts.sweeper.Trigger()
		_, _ = w.Write([]byte(`{"triggered":true}`))
	})

	return r
}

func runWorkerHTTPServer(ctx context.Context, lis net.Listener, opts workerHTTPOpts) error {
	srv := &http.Server{Handler: workerRoutes(opts), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		_ = lis.Close()
	}()

	if err := srv.Serve(lis); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
