// Package sweep периодически обходит все сохранённые неархивные посылки,
// обновляет их снимки и публикует событие при смене статуса.
package sweep

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/BearBump/ParcelBox/internal/broker/messages"
	"github.com/BearBump/ParcelBox/internal/cache"
	"github.com/BearBump/ParcelBox/internal/metrics"
	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/BearBump/ParcelBox/internal/services/parcels"
	"github.com/pkg/errors"
)

type Repository interface {
	ClaimDueParcelRefs(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*models.ParcelRef, error)
	ScheduleNextCheck(ctx context.Context, id uint64, at time.Time, failed bool) error
}

type Refresher interface {
	RefreshParcel(ctx context.Context, ref *models.ParcelRef) (*parcels.Refresh, error)
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type Sweeper struct {
	repo      Repository
	refresher Refresher
	producer  Producer
	rl        cache.RateLimiter
	metrics   *metrics.Metrics

	topic string

	planner *Planner

	interval           time.Duration
	batchSize          int
	concurrency        int
	lease              time.Duration
	rateLimitPerMinute int64
	carrierLimits      map[string]int64

	publishAttempts int
	publishBackoff  time.Duration

	triggerCh chan struct{}

	startedAtUnixNano   int64
	lastCycleUnixNano   atomic.Int64
	lastTriggerUnixNano atomic.Int64
	totalClaimed        atomic.Int64
	totalProcessed      atomic.Int64
	totalChanged        atomic.Int64
	totalErrors         atomic.Int64
	inFlight            atomic.Int64
	lastErrorMu         sync.Mutex
	lastError           string
}

// New: rl, producer и m могут быть nil.
func New(repo Repository, refresher Refresher, producer Producer, rl cache.RateLimiter, topic string, m *metrics.Metrics) *Sweeper {
	return &Sweeper{
		repo:               repo,
		refresher:          refresher,
		producer:           producer,
		rl:                 rl,
		metrics:            m,
		topic:              topic,
		planner:            NewPlanner(DefaultPlannerConfig(), nil),
		interval:           30 * time.Second,
		batchSize:          100,
		concurrency:        10,
		lease:              120 * time.Second,
		rateLimitPerMinute: 60,
		carrierLimits:      map[string]int64{},
		publishAttempts:    10,
		publishBackoff:     150 * time.Millisecond,
		triggerCh:          make(chan struct{}, 1),
		startedAtUnixNano:  time.Now().UTC().UnixNano(),
	}
}

func (s *Sweeper) WithSettings(interval time.Duration, batchSize, concurrency int, lease time.Duration, rlPerMin int64) *Sweeper {
	if interval > 0 {
		s.interval = interval
	}
	if batchSize > 0 {
		s.batchSize = batchSize
	}
	if concurrency > 0 {
		s.concurrency = concurrency
	}
	if lease > 0 {
		s.lease = lease
	}
	if rlPerMin > 0 {
		s.rateLimitPerMinute = rlPerMin
	}
	return s
}

// WithCarrierRateLimits overrides the per-minute limit for specific carriers.
func (s *Sweeper) WithCarrierRateLimits(limits map[string]int) *Sweeper {
	for id, n := range limits {
		if n > 0 {
			s.carrierLimits[id] = int64(n)
		}
	}
	return s
}

func (s *Sweeper) WithPlanner(p *Planner) *Sweeper {
	if p != nil {
		s.planner = p
	}
	return s
}

// Trigger forces an immediate sweep cycle (best-effort, non-blocking).
func (s *Sweeper) Trigger() {
	s.lastTriggerUnixNano.Store(time.Now().UTC().UnixNano())
	select {
	case s.triggerCh <- struct{}{}:
	default:
	}
}

type Stats struct {
	StartedAt      time.Time  `json:"startedAt"`
	LastCycleAt    *time.Time `json:"lastCycleAt,omitempty"`
	LastTriggerAt  *time.Time `json:"lastTriggerAt,omitempty"`
	TotalClaimed   int64      `json:"totalClaimed"`
	TotalProcessed int64      `json:"totalProcessed"`
	TotalChanged   int64      `json:"totalChanged"`
	TotalErrors    int64      `json:"totalErrors"`
	InFlight       int64      `json:"inFlight"`
	LastError      string     `json:"lastError,omitempty"`
}

func (s *Sweeper) Stats() Stats {
	st := Stats{
		StartedAt:      time.Unix(0, s.startedAtUnixNano).UTC(),
		TotalClaimed:   s.totalClaimed.Load(),
		TotalProcessed: s.totalProcessed.Load(),
		TotalChanged:   s.totalChanged.Load(),
		TotalErrors:    s.totalErrors.Load(),
		InFlight:       s.inFlight.Load(),
	}
	if n := s.lastCycleUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastCycleAt = &t
	}
	if n := s.lastTriggerUnixNano.Load(); n > 0 {
		t := time.Unix(0, n).UTC()
		st.LastTriggerAt = &t
	}
	s.lastErrorMu.Lock()
	st.LastError = s.lastError
	s.lastErrorMu.Unlock()
	return st
}

func (s *Sweeper) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.runOnce(ctx)
		case <-s.triggerCh:
			s.runOnce(ctx)
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	now := time.Now().UTC()
	s.lastCycleUnixNano.Store(now.UnixNano())

	refs, err := s.repo.ClaimDueParcelRefs(ctx, now, s.batchSize, s.lease)
	if err != nil {
		slog.Error("claim due parcels", "error", err.Error())
		s.setLastError(err)
		return
	}
	s.totalClaimed.Add(int64(len(refs)))

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	for _, ref := range refs {
		sem <- struct{}{}
		wg.Add(1)
		s.inFlight.Add(1)
		go func(ref *models.ParcelRef) {
			defer func() {
				s.inFlight.Add(-1)
				<-sem
				wg.Done()
			}()
			if err := s.processOne(ctx, ref); err != nil {
				s.totalErrors.Add(1)
				s.setLastError(err)
				slog.Error("sweep parcel", "parcel_id", ref.ID, "carrier", ref.CarrierID, "error", err.Error())
			}
			s.totalProcessed.Add(1)
		}(ref)
	}
	wg.Wait()
}

func (s *Sweeper) processOne(ctx context.Context, ref *models.ParcelRef) error {
	now := time.Now().UTC()

	if s.rl != nil && s.rateLimitPerMinute > 0 {
		limit := s.rateLimitPerMinute
		if l, ok := s.carrierLimits[ref.CarrierID]; ok {
			limit = l
		}
		minuteKey := fmt.Sprintf("rl:carrier:%s:%s", ref.CarrierID, now.Format("200601021504"))
		allowed, n, err := s.rl.Allow(ctx, minuteKey, limit, 70*time.Second)
		if err != nil {
			return errors.Wrap(err, "rate limit")
		}
		if !allowed {
			// посылка вернётся в выборку после истечения lease
			slog.Warn("rate limit exceeded", "carrier", ref.CarrierID, "count", n)
			s.metrics.SweepParcel("rate_limited")
			return nil
		}
	}

	res, err := s.refresher.RefreshParcel(ctx, ref)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.metrics.SweepParcel(metrics.Outcome(err))
		next := now.Add(s.planner.BackoffDelay(ref.CheckFailCount + 1))
		if schedErr := s.repo.ScheduleNextCheck(ctx, ref.ID, next, true); schedErr != nil {
			slog.Error("schedule next check", "parcel_id", ref.ID, "error", schedErr.Error())
		}
		return err
	}
	s.metrics.SweepParcel(metrics.Outcome(nil))

	next := now.Add(s.planner.NextCheckDelay(res.Parcel.CurrentStatus))
	if err := s.repo.ScheduleNextCheck(ctx, ref.ID, next, false); err != nil {
		return err
	}

	if !res.Changed {
		return nil
	}
	s.totalChanged.Add(1)
	s.metrics.StatusChanged(ref.CarrierID)

	lastChange, _ := res.Parcel.LastChange()
	msg := messages.NewParcelStatusChanged(*ref, res.Previous.LastStatus, res.Parcel.CurrentStatus, lastChange, now)
	slog.Info("parcel status changed",
		"parcel_id", ref.ID, "carrier", ref.CarrierID,
		"old", msg.OldStatus.String(), "new", msg.NewStatus.String())
	return s.publish(ctx, msg)
}

func (s *Sweeper) publish(ctx context.Context, msg messages.ParcelStatusChanged) error {
	if s.producer == nil {
		return nil
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "marshal kafka msg")
	}

	// Kafka может быть не готова сразу после старта docker compose.
	var pubErr error
	for i := 0; i < s.publishAttempts; i++ {
		if pubErr = s.producer.Publish(ctx, s.topic, msg.Key(), b); pubErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(i+1) * s.publishBackoff):
		}
	}
	return errors.Wrap(pubErr, "publish status change")
}

func (s *Sweeper) setLastError(err error) {
	s.lastErrorMu.Lock()
	s.lastError = err.Error()
	s.lastErrorMu.Unlock()
}
