package main

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/BearBump/ParcelBox/config"
	"github.com/BearBump/ParcelBox/internal/broker/messages"
	"github.com/BearBump/ParcelBox/internal/cache/memcache"
	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/integrations/carrier/fake"
	"github.com/BearBump/ParcelBox/internal/metrics"
	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/BearBump/ParcelBox/internal/services/parcels"
	"github.com/BearBump/ParcelBox/internal/storage/sqliteparcels"
	"github.com/stretchr/testify/require"
)

type fakeConsumer struct {
	msgs    []messages.ParcelStatusChanged
	handled chan error
}

func (c *fakeConsumer) ConsumeStatusChanges(ctx context.Context, handler func(ctx context.Context, m messages.ParcelStatusChanged) error) error {
	for _, m := range c.msgs {
		c.handled <- handler(ctx, m)
	}
	<-ctx.Done()
	return ctx.Err()
}

func newTestService(t *testing.T) (*parcels.Service, *memcache.MemCache) {
	t.Helper()
	st, err := sqliteparcels.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(st.Close)

	mc := memcache.New(time.Minute, time.Minute)
	reg := carrier.NewRegistry(fake.New(time.UTC))
	return parcels.New(st, reg, mc, time.Minute, metrics.New()), mc
}

func TestRunParcelAPI_ServesAndStops(t *testing.T) {
	svc, _ := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addrCh := make(chan string, 1)
	opts := parcelAPIOpts{
		httpAddr:      "127.0.0.1:0",
		topic:         "t",
		consumerGroup: "g",
		onListen:      func(httpAddr string) { addrCh <- httpAddr },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- runParcelAPI(ctx, opts, svc, metrics.New(), nil)
	}()

	httpAddr := <-addrCh

	resp, err := http.Get("http://" + httpAddr + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Get("http://" + httpAddr + "/carriers")
	require.NoError(t, err)
	defer resp2.Body.Close()
	body, _ := io.ReadAll(resp2.Body)
	require.Contains(t, string(body), `"demo"`)

	cancel()
	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting server to stop")
	}
}

func TestRunParcelAPI_ConsumerEvictsCache(t *testing.T) {
	svc, mc := newTestService(t)

	_, err := svc.GetParcel(context.Background(), fake.CarrierID, "DEMO42", "")
	require.NoError(t, err)
	_, ok, _ := mc.Get(context.Background(), "parcel:demo:DEMO42:")
	require.True(t, ok)

	msg := messages.NewParcelStatusChanged(
		models.ParcelRef{ID: 1, CarrierID: fake.CarrierID, TrackingID: "DEMO42"},
		models.StatusInTransit, models.StatusDelivered, time.Now(), time.Now(),
	)
	cons := &fakeConsumer{
		msgs:    []messages.ParcelStatusChanged{msg},
		handled: make(chan error, 1),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- runParcelAPI(ctx, parcelAPIOpts{httpAddr: "127.0.0.1:0"}, svc, nil, cons)
	}()

	require.NoError(t, <-cons.handled)

	_, ok, _ = mc.Get(context.Background(), "parcel:demo:DEMO42:")
	require.False(t, ok)

	cancel()
	require.Error(t, <-errCh)
}

func TestNewParcelAPIApp_SQLiteMemoryCache(t *testing.T) {
	cfg := &config.Config{
		SQLite: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "pb.db")},
		ParcelBox: config.ParcelBoxConfig{
			HTTPAddr: "127.0.0.1:0",
			Storage:  "sqlite",
			Cache:    "memory",
		},
	}
	app, err := newParcelAPIApp(cfg)
	require.NoError(t, err)
	defer app.Close()

	require.NotNil(t, app.svc)
	require.Nil(t, app.consumer)
	require.Equal(t, "parcel-api", app.opts.consumerGroup)
	require.Equal(t, "parcel.status_changed", app.opts.topic)
}

func TestNewParcelAPIApp_BadTimezone(t *testing.T) {
	cfg := &config.Config{
		SQLite:    config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "pb.db")},
		ParcelBox: config.ParcelBoxConfig{Timezone: "nope"},
	}
	_, err := newParcelAPIApp(cfg)
	require.Error(t, err)
}
