package parcels

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BearBump/ParcelBox/internal/broker/messages"
	"github.com/BearBump/ParcelBox/internal/cache"
	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/metrics"
	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/pkg/errors"
)

// Repository — persistence collaborator: pgparcels или sqliteparcels.
type Repository interface {
	CreateParcelRef(ctx context.Context, in models.ParcelRefCreateInput) (*models.ParcelRef, error)
	GetParcelRef(ctx context.Context, id uint64) (*models.ParcelRef, error)
	ListParcelRefs(ctx context.Context, includeArchived bool) ([]*models.ParcelRef, error)
	SetArchived(ctx context.Context, id uint64, archived bool) error
	DismissArchivePrompt(ctx context.Context, id uint64) error
	DeleteParcelRef(ctx context.Context, id uint64) error

	GetStatusSnapshot(ctx context.Context, parcelRefID uint64) (*models.StatusSnapshot, error)
	UpsertStatusSnapshot(ctx context.Context, snap models.StatusSnapshot) error
	DeleteStatusSnapshot(ctx context.Context, parcelRefID uint64) error

	GetHistoryEvents(ctx context.Context, parcelRefID uint64) ([]models.HistoryEvent, error)
	InsertHistoryEvents(ctx context.Context, parcelRefID uint64, events []models.HistoryEvent) error
	DeleteHistory(ctx context.Context, parcelRefID uint64) error
}

// Carriers is satisfied by *carrier.Registry.
type Carriers interface {
	GetParcel(ctx context.Context, carrierID, trackingID, postalCode string) (models.Parcel, error)
	Descriptor(carrierID string) (models.CarrierDescriptor, bool)
	List() []models.CarrierDescriptor
	AcceptsFormat(carrierID, trackingID string) bool
	Rank(trackingID string) []models.CarrierDescriptor
}

type Service struct {
	repo     Repository
	carriers Carriers
	cache    cache.BytesCache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	zone     *time.Location
	now      func() time.Time
}

// New: c и m могут быть nil, тогда кэш и метрики просто выключены.
func New(repo Repository, carriers Carriers, c cache.BytesCache, cacheTTL time.Duration, m *metrics.Metrics) *Service {
	return &Service{
		repo:     repo,
		carriers: carriers,
		cache:    c,
		cacheTTL: cacheTTL,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Detail — то, что показывается на экране посылки. ErrorKind заполнен, если Parcel синтетический.
type Detail struct {
	Ref       models.ParcelRef `json:"ref"`
	Parcel    models.Parcel    `json:"parcel"`
	ErrorKind string           `json:"errorKind,omitempty"`
}

// Refresh is the result of one sweep fetch for a saved parcel.
type Refresh struct {
	Previous *models.StatusSnapshot
	Parcel   models.Parcel
	Changed  bool
}

// WithZone задаёт опорную зону: в ней отдаётся история архивных посылок, прочитанная из базы.
func (s *Service) WithZone(loc *time.Location) *Service {
	s.zone = loc
	return s
}

func (s *Service) ListCarriers() []models.CarrierDescriptor {
	return s.carriers.List()
}

func (s *Service) AcceptsFormat(carrierID, trackingID string) bool {
	return s.carriers.AcceptsFormat(carrierID, trackingID)
}

func (s *Service) RankCarriers(trackingID string) []models.CarrierDescriptor {
	return s.carriers.Rank(trackingID)
}

// GetParcel — прямой запрос к перевозчику без привязки к сохранённой посылке.
// Ошибка всегда *carrier.Error.
func (s *Service) GetParcel(ctx context.Context, carrierID, trackingID, postalCode string) (models.Parcel, error) {
	return s.fetch(ctx, carrierID, trackingID, postalCode, true)
}

func (s *Service) fetch(ctx context.Context, carrierID, trackingID, postalCode string, useCache bool) (models.Parcel, error) {
	key := parcelKey(carrierID, trackingID, postalCode)

	if useCache && s.cacheEnabled() {
		b, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			slog.Warn("parcel cache get failed", "key", key, "error", err.Error())
			s.metrics.CacheLookup("error")
		case ok:
			var p models.Parcel
			if json.Unmarshal(b, &p) == nil {
				s.metrics.CacheLookup("hit")
				return p, nil
			}
			s.metrics.CacheLookup("corrupt")
		default:
			s.metrics.CacheLookup("miss")
		}
	}

	start := time.Now()
	p, err := s.carriers.GetParcel(ctx, carrierID, trackingID, postalCode)
	s.metrics.ObserveCarrierCall(carrierID, err, time.Since(start))
	if err != nil {
		return models.Parcel{}, err
	}

	// брошенный запрос не пишет в общий кэш
	if s.cacheEnabled() && ctx.Err() == nil {
		b, _ := json.Marshal(p)
		if err := s.cache.Set(ctx, key, b, s.cacheTTL); err != nil {
			slog.Warn("parcel cache set failed", "key", key, "error", err.Error())
		}
	}
	return p, nil
}

// GetParcelDetail drives one fetch for a saved parcel.
// Архивная посылка с сохранённой историей отдаётся из базы, перевозчик не вызывается.
// Ошибка перевозчика превращается в синтетический Parcel; снимок при этом не трогается.
func (s *Service) GetParcelDetail(ctx context.Context, id uint64) (*Detail, error) {
	ref, err := s.repo.GetParcelRef(ctx, id)
	if err != nil {
		return nil, err
	}

	if ref.IsArchived {
		hist, err := s.repo.GetHistoryEvents(ctx, ref.ID)
		if err != nil {
			return nil, errors.Wrap(err, "get history")
		}
		if len(hist) > 0 {
			return &Detail{Ref: *ref, Parcel: archivedParcel(ref.TrackingID, s.inZone(hist))}, nil
		}
	}

	p, err := s.fetch(ctx, ref.CarrierID, ref.TrackingID, ref.PostalCodeValue(), true)
	// запрос отменён: результат никуда не применяем
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		slog.Warn("parcel fetch failed", "parcel_id", ref.ID, "carrier", ref.CarrierID, "error", err.Error())
		return &Detail{Ref: *ref, Parcel: SyntheticParcel(ref.TrackingID, err, s.now()), ErrorKind: metrics.Outcome(err)}, nil
	}

	if ref.IsArchived {
		if err := s.repo.InsertHistoryEvents(ctx, ref.ID, p.History); err != nil {
			slog.Error("store archived history failed", "parcel_id", ref.ID, "error", err.Error())
		}
		return &Detail{Ref: *ref, Parcel: p}, nil
	}

	if err := s.repo.UpsertStatusSnapshot(ctx, s.snapshotOf(ref.ID, p)); err != nil {
		slog.Error("upsert status snapshot failed", "parcel_id", ref.ID, "error", err.Error())
	}
	return &Detail{Ref: *ref, Parcel: p}, nil
}

// RefreshParcel fetches a non-archived parcel bypassing the cache and upserts its snapshot.
// Changed is true only when a previous snapshot existed with a different status.
func (s *Service) RefreshParcel(ctx context.Context, ref *models.ParcelRef) (*Refresh, error) {
	prev, err := s.repo.GetStatusSnapshot(ctx, ref.ID)
	if err != nil {
		return nil, errors.Wrap(err, "get status snapshot")
	}

	p, err := s.fetch(ctx, ref.CarrierID, ref.TrackingID, ref.PostalCodeValue(), false)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpsertStatusSnapshot(ctx, s.snapshotOf(ref.ID, p)); err != nil {
		return nil, errors.Wrap(err, "upsert status snapshot")
	}

	return &Refresh{
		Previous: prev,
		Parcel:   p,
		Changed:  prev != nil && prev.LastStatus != p.CurrentStatus,
	}, nil
}

// ApplyStatusChange evicts the cached parcel so the next view refetches it.
func (s *Service) ApplyStatusChange(ctx context.Context, msg messages.ParcelStatusChanged) error {
	if msg.CarrierID == "" || msg.TrackingID == "" {
		return errors.New("carrier_id and tracking_id are required")
	}
	if !s.cacheEnabled() {
		return nil
	}
	return s.cache.Delete(ctx, parcelKey(msg.CarrierID, msg.TrackingID, msg.PostalCode))
}

func (s *Service) CreateParcelRef(ctx context.Context, in models.ParcelRefCreateInput) (*models.ParcelRef, error) {
	in.HumanName = strings.TrimSpace(in.HumanName)
	in.TrackingID = strings.TrimSpace(in.TrackingID)
	in.CarrierID = strings.TrimSpace(in.CarrierID)

	d, ok := s.carriers.Descriptor(in.CarrierID)
	if !ok {
		return nil, carrier.NewError(carrier.KindValidation, in.CarrierID, errors.New("unknown carrier"))
	}
	if in.TrackingID == "" {
		return nil, carrier.NewError(carrier.KindValidation, in.CarrierID, errors.New("tracking id is required"))
	}

	if in.PostalCode != nil {
		pc := strings.TrimSpace(*in.PostalCode)
		in.PostalCode = &pc
		if pc == "" || !d.AcceptsPostalCode {
			in.PostalCode = nil
		}
	}
	if d.RequiresPostalCode && in.PostalCode == nil {
		return nil, carrier.NewError(carrier.KindValidation, in.CarrierID, errors.New("postal code is required"))
	}
	if in.HumanName == "" {
		in.HumanName = in.TrackingID
	}

	return s.repo.CreateParcelRef(ctx, in)
}

func (s *Service) GetParcelRef(ctx context.Context, id uint64) (*models.ParcelRef, error) {
	return s.repo.GetParcelRef(ctx, id)
}

func (s *Service) ListParcelRefs(ctx context.Context, includeArchived bool) ([]*models.ParcelRef, error) {
	return s.repo.ListParcelRefs(ctx, includeArchived)
}

// SetArchived: при разархивировании локальная история удаляется, посылка снова живёт через снимок.
func (s *Service) SetArchived(ctx context.Context, id uint64, archived bool) error {
	if err := s.repo.SetArchived(ctx, id, archived); err != nil {
		return err
	}
	if !archived {
		return s.repo.DeleteHistory(ctx, id)
	}
	return nil
}

func (s *Service) DismissArchivePrompt(ctx context.Context, id uint64) error {
	return s.repo.DismissArchivePrompt(ctx, id)
}

// DeleteParcel removes the snapshot, the archived history and the ref itself.
func (s *Service) DeleteParcel(ctx context.Context, id uint64) error {
	ref, err := s.repo.GetParcelRef(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteStatusSnapshot(ctx, id); err != nil {
		return err
	}
	if ref.IsArchived {
		if err := s.repo.DeleteHistory(ctx, id); err != nil {
			return err
		}
	}
	if err := s.repo.DeleteParcelRef(ctx, id); err != nil {
		return err
	}

	if s.cacheEnabled() {
		_ = s.cache.Delete(ctx, parcelKey(ref.CarrierID, ref.TrackingID, ref.PostalCodeValue()))
	}
	return nil
}

func (s *Service) snapshotOf(refID uint64, p models.Parcel) models.StatusSnapshot {
	lastChange, ok := p.LastChange()
	if !ok {
		lastChange = s.now()
	}
	return models.StatusSnapshot{ParcelRefID: refID, LastStatus: p.CurrentStatus, LastChangeTimestamp: lastChange}
}

func (s *Service) inZone(hist []models.HistoryEvent) []models.HistoryEvent {
	if s.zone == nil {
		return hist
	}
	out := make([]models.HistoryEvent, len(hist))
	for i, e := range hist {
		e.Time = e.Time.In(s.zone)
		out[i] = e
	}
	return out
}

func (s *Service) cacheEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

func archivedParcel(trackingID string, hist []models.HistoryEvent) models.Parcel {
	return models.Parcel{TrackingID: trackingID, CurrentStatus: models.StatusDelivered, History: hist}
}

func parcelKey(carrierID, trackingID, postalCode string) string {
	return fmt.Sprintf("parcel:%s:%s:%s", carrierID, strings.TrimSpace(trackingID), strings.TrimSpace(postalCode))
}
