package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/BearBump/ParcelBox/config"
	"github.com/BearBump/ParcelBox/internal/bootstrap"
	"github.com/BearBump/ParcelBox/internal/broker/kafka"
	"github.com/BearBump/ParcelBox/internal/cache"
	"github.com/BearBump/ParcelBox/internal/cache/memcache"
	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/integrations/carrier/fake"
	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/BearBump/ParcelBox/internal/services/parcels"
	"github.com/BearBump/ParcelBox/internal/services/sweep"
	"github.com/BearBump/ParcelBox/internal/storage/sqliteparcels"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	mu   sync.Mutex
	msgs [][]byte
}

func (p *recordingProducer) Publish(ctx context.Context, topic string, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, value)
	return nil
}

type closableStore struct {
	bootstrap.Store
	closed bool
}

func (s *closableStore) Close() {
	s.closed = true
	s.Store.Close()
}

func testFactories(t *testing.T, st bootstrap.Store, producer sweep.Producer) workerFactories {
	t.Helper()
	return workerFactories{
		newStorage: func(cfg *config.Config) (bootstrap.Store, error) {
			return st, nil
		},
		newCache: func(cfg *config.Config) (cache.BytesCache, func(), error) {
			return memcache.New(time.Minute, time.Minute), func() {}, nil
		},
		newProducer: func(cfg *config.Config) (sweep.Producer, func()) {
			return producer, func() {}
		},
		newRateLimiter: func(cfg *config.Config) (cache.RateLimiter, func()) {
			return memcache.NewRateLimiter(), func() {}
		},
		newCarriers: func(cfg *config.Config) (parcels.Carriers, error) {
			return carrier.NewRegistry(fake.New(time.UTC)), nil
		},
	}
}

func newMemStore(t *testing.T) *sqliteparcels.Storage {
	t.Helper()
	st, err := sqliteparcels.New(":memory:")
	require.NoError(t, err)
	return st
}

func TestDefaultWorkerFactories_ProducerAndRateLimiter(t *testing.T) {
	f := defaultWorkerFactories()

	p, closeP := f.newProducer(&config.Config{})
	require.Nil(t, p)
	closeP()

	p, closeP = f.newProducer(&config.Config{Kafka: config.KafkaConfig{Host: "localhost", Port: 9092}})
	defer closeP()
	_, ok := p.(*kafka.Producer)
	require.True(t, ok)

	rl, closeRL := f.newRateLimiter(&config.Config{})
	defer closeRL()
	require.NotNil(t, rl)

	cs, err := f.newCarriers(&config.Config{})
	require.NoError(t, err)
	require.NotEmpty(t, cs.List())
}

func TestRunParcelWorker_ContextCanceled(t *testing.T) {
	st := &closableStore{Store: newMemStore(t)}

	cfg := &config.Config{
		ParcelBox: config.ParcelBoxConfig{WorkerHTTPAddr: "127.0.0.1:0", SweepIntervalSeconds: 1},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RunParcelWorker(ctx, cfg, testFactories(t, st, &recordingProducer{}), nil)
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, st.closed)
}

func TestRunParcelWorker_TriggerSweepsAndServesStats(t *testing.T) {
	st := newMemStore(t)
	ctx := context.Background()

	ref, err := st.CreateParcelRef(ctx, models.ParcelRefCreateInput{
		CarrierID:  fake.CarrierID,
		TrackingID: "DEMO7",
		HumanName:  "demo",
	})
	require.NoError(t, err)

	// старый снимок с другим статусом, чтобы обход увидел смену
	require.NoError(t, st.UpsertStatusSnapshot(ctx, models.StatusSnapshot{
		ParcelRefID:         ref.ID,
		LastStatus:          models.StatusUnknown,
		LastChangeTimestamp: time.Unix(0, 0).UTC(),
	}))

	producer := &recordingProducer{}
	cfg := &config.Config{
		ParcelBox: config.ParcelBoxConfig{
			WorkerHTTPAddr:          "127.0.0.1:0",
			SweepIntervalSeconds:    3600,
			SweepRateLimitPerMinute: 100,
		},
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	addrCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- RunParcelWorker(runCtx, cfg, testFactories(t, st, producer), func(addr string) { addrCh <- addr })
	}()
	addr := <-addrCh
	base := "http://" + addr

	resp, err := http.Post(base+"/trigger", "application/json", nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		producer.mu.Lock()
		defer producer.mu.Unlock()
		return len(producer.msgs) == 1
	}, 3*time.Second, 20*time.Millisecond)

	var msg struct {
		ParcelRefID uint64 `json:"parcel_ref_id"`
		OldStatus   string `json:"old_status"`
	}
	producer.mu.Lock()
	require.NoError(t, json.Unmarshal(producer.msgs[0], &msg))
	producer.mu.Unlock()
	require.Equal(t, ref.ID, msg.ParcelRefID)
	require.Equal(t, "UNKNOWN", msg.OldStatus)

	snap, err := st.GetStatusSnapshot(ctx, ref.ID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.NotEqual(t, models.StatusUnknown, snap.LastStatus)

	resp, err = http.Get(base + "/stats")
	require.NoError(t, err)
	var stats sweep.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	_ = resp.Body.Close()
	require.EqualValues(t, 1, stats.TotalChanged)

	resp, err = http.Get(base + "/readyz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(base + "/config")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.Contains(t, string(body), `"intervalSeconds":3600`)

	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.Contains(t, string(body), "parcelbox_status_changes_total")

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return context.DeadlineExceeded }

func TestWorkerRoutes_NotReady(t *testing.T) {
	h := workerRoutes(workerHTTPOpts{store: failingPinger{}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Contains(t, rec.Body.String(), "sweeper not wired")
}
