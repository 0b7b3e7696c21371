package sweep

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/BearBump/ParcelBox/internal/broker/messages"
	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/metrics"
	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/BearBump/ParcelBox/internal/services/parcels"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type scheduled struct {
	id     uint64
	at     time.Time
	failed bool
}

type fakeRepo struct {
	mu        sync.Mutex
	due       []*models.ParcelRef
	claimErr  error
	claims    int
	schedules []scheduled
}

func (r *fakeRepo) ClaimDueParcelRefs(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*models.ParcelRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims++
	out := r.due
	r.due = nil
	return out, r.claimErr
}

func (r *fakeRepo) ScheduleNextCheck(ctx context.Context, id uint64, at time.Time, failed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schedules = append(r.schedules, scheduled{id: id, at: at, failed: failed})
	return nil
}

type fakeRefresher struct {
	res   *parcels.Refresh
	err   error
	calls int
}

func (f *fakeRefresher) RefreshParcel(ctx context.Context, ref *models.ParcelRef) (*parcels.Refresh, error) {
	f.calls++
	return f.res, f.err
}

type fakeProducer struct {
	mu    sync.Mutex
	topic string
	key   []byte
	value []byte
	calls int
	err   error
}

func (p *fakeProducer) Publish(ctx context.Context, topic string, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.topic, p.key, p.value = topic, key, value
	return p.err
}

type fakeRL struct {
	allowed bool
	count   int64
	err     error
	keys    []string
	limits  []int64
}

func (r *fakeRL) Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	r.keys = append(r.keys, key)
	r.limits = append(r.limits, limit)
	return r.allowed, r.count, r.err
}

func delivered(prev models.Status) *parcels.Refresh {
	r := &parcels.Refresh{
		Parcel: models.Parcel{
			TrackingID:    "N",
			CurrentStatus: models.StatusDelivered,
			History:       []models.HistoryEvent{{Description: "Delivered", Time: time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)}},
		},
	}
	if prev != models.StatusUnknown {
		r.Previous = &models.StatusSnapshot{ParcelRefID: 42, LastStatus: prev}
		r.Changed = prev != models.StatusDelivered
	}
	return r
}

func TestSweeper_processOne_ChangePublishes(t *testing.T) {
	repo := &fakeRepo{}
	fp := &fakeProducer{}
	m := metrics.New()
	s := New(repo, &fakeRefresher{res: delivered(models.StatusOutForDelivery)}, fp, &fakeRL{allowed: true}, "parcel.status_changed", m)

	ref := &models.ParcelRef{ID: 42, CarrierID: "postnl", TrackingID: "N"}
	require.NoError(t, s.processOne(context.Background(), ref))

	require.Equal(t, 1, fp.calls)
	require.Equal(t, "parcel.status_changed", fp.topic)
	require.Equal(t, []byte("42"), fp.key)

	var msg messages.ParcelStatusChanged
	require.NoError(t, json.Unmarshal(fp.value, &msg))
	require.Equal(t, models.StatusOutForDelivery, msg.OldStatus)
	require.Equal(t, models.StatusDelivered, msg.NewStatus)
	require.Equal(t, time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC), msg.LastChange)

	require.Len(t, repo.schedules, 1)
	require.False(t, repo.schedules[0].failed)
	require.WithinDuration(t, time.Now().Add(7*24*time.Hour), repo.schedules[0].at, time.Minute)

	n, err := testutil.GatherAndCount(m.Registry(), "parcelbox_status_changes_total", "parcelbox_sweep_parcels_total")
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestSweeper_processOne_NoChangeNoPublish(t *testing.T) {
	repo := &fakeRepo{}
	fp := &fakeProducer{}
	s := New(repo, &fakeRefresher{res: delivered(models.StatusUnknown)}, fp, nil, "t", nil)

	require.NoError(t, s.processOne(context.Background(), &models.ParcelRef{ID: 1, CarrierID: "demo"}))
	require.Zero(t, fp.calls)
	require.Len(t, repo.schedules, 1)
}

func TestSweeper_processOne_ErrorBackoff(t *testing.T) {
	repo := &fakeRepo{}
	fp := &fakeProducer{}
	s := New(repo, &fakeRefresher{err: carrier.NewError(carrier.KindNetworkFailure, "demo", nil)}, fp, nil, "t", nil)

	ref := &models.ParcelRef{ID: 1, CarrierID: "demo", CheckFailCount: 2}
	err := s.processOne(context.Background(), ref)
	require.ErrorIs(t, err, carrier.ErrNetworkFailure)
	require.Zero(t, fp.calls)
	require.Len(t, repo.schedules, 1)
	require.True(t, repo.schedules[0].failed)
	// третья неудача подряд
	require.WithinDuration(t, time.Now().Add(30*time.Minute), repo.schedules[0].at, time.Minute)
}

func TestSweeper_processOne_RateLimited(t *testing.T) {
	repo := &fakeRepo{}
	refresher := &fakeRefresher{res: delivered(models.StatusUnknown)}
	rl := &fakeRL{allowed: false, count: 61}
	s := New(repo, refresher, nil, rl, "t", nil).WithCarrierRateLimits(map[string]int{"usps": 5})

	require.NoError(t, s.processOne(context.Background(), &models.ParcelRef{ID: 1, CarrierID: "usps"}))
	require.Zero(t, refresher.calls)
	require.Empty(t, repo.schedules)
	require.Len(t, rl.keys, 1)
	require.Contains(t, rl.keys[0], "rl:carrier:usps:")
	require.Equal(t, int64(5), rl.limits[0])
}

func TestSweeper_processOne_RateLimiterError(t *testing.T) {
	s := New(&fakeRepo{}, &fakeRefresher{}, nil, &fakeRL{err: errors.New("redis down")}, "t", nil)
	require.Error(t, s.processOne(context.Background(), &models.ParcelRef{ID: 1, CarrierID: "demo"}))
}

func TestSweeper_publish_Retries(t *testing.T) {
	fp := &fakeProducer{err: errors.New("leader not available")}
	s := New(&fakeRepo{}, &fakeRefresher{res: delivered(models.StatusInTransit)}, fp, nil, "t", nil)
	s.publishAttempts = 3
	s.publishBackoff = time.Millisecond

	err := s.processOne(context.Background(), &models.ParcelRef{ID: 9, CarrierID: "demo"})
	require.Error(t, err)
	require.Equal(t, 3, fp.calls)
}

func TestSweeper_WithSettings(t *testing.T) {
	s := New(nil, nil, nil, nil, "t", nil).
		WithSettings(5*time.Second, 7, 9, 11*time.Second, 13)
	require.Equal(t, 5*time.Second, s.interval)
	require.Equal(t, 7, s.batchSize)
	require.Equal(t, 9, s.concurrency)
	require.Equal(t, 11*time.Second, s.lease)
	require.Equal(t, int64(13), s.rateLimitPerMinute)
}

func TestSweeper_runOnce_Stats(t *testing.T) {
	repo := &fakeRepo{due: []*models.ParcelRef{
		{ID: 1, CarrierID: "demo"},
		{ID: 2, CarrierID: "demo"},
		{ID: 3, CarrierID: "demo"},
	}}
	s := New(repo, &fakeRefresher{res: delivered(models.StatusUnknown)}, nil, nil, "t", nil).
		WithSettings(time.Second, 10, 2, time.Minute, 0)

	s.runOnce(context.Background())

	st := s.Stats()
	require.EqualValues(t, 3, st.TotalClaimed)
	require.EqualValues(t, 3, st.TotalProcessed)
	require.Zero(t, st.TotalErrors)
	require.Zero(t, st.InFlight)
	require.NotNil(t, st.LastCycleAt)
	require.Len(t, repo.schedules, 3)
}

func TestSweeper_runOnce_ClaimError(t *testing.T) {
	s := New(&fakeRepo{claimErr: errors.New("db down")}, &fakeRefresher{}, nil, nil, "t", nil)
	s.runOnce(context.Background())
	require.Equal(t, "db down", s.Stats().LastError)
}
