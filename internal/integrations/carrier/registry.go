package carrier

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/BearBump/ParcelBox/internal/models"
)

// Registry — фиксированный набор перевозчиков, собирается при старте.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		id := a.Descriptor().ID
		if _, dup := r.adapters[id]; dup {
			panic(fmt.Sprintf("carrier %q registered twice", id))
		}
		r.adapters[id] = a
	}
	return r
}

func (r *Registry) Get(carrierID string) (Adapter, bool) {
	a, ok := r.adapters[carrierID]
	return a, ok
}

func (r *Registry) Descriptor(carrierID string) (models.CarrierDescriptor, bool) {
	a, ok := r.adapters[carrierID]
	if !ok {
		return models.CarrierDescriptor{}, false
	}
	return a.Descriptor(), true
}

// List returns all descriptors sorted by id.
func (r *Registry) List() []models.CarrierDescriptor {
	out := make([]models.CarrierDescriptor, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a.Descriptor())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AcceptsFormat is false for unknown carriers.
func (r *Registry) AcceptsFormat(carrierID, trackingID string) bool {
	a, ok := r.adapters[carrierID]
	if !ok {
		return false
	}
	return a.AcceptsFormat(strings.TrimSpace(trackingID))
}

// Rank returns carriers whose format check accepts trackingID, sorted by id.
func (r *Registry) Rank(trackingID string) []models.CarrierDescriptor {
	var out []models.CarrierDescriptor
	for _, d := range r.List() {
		if r.adapters[d.ID].AcceptsFormat(strings.TrimSpace(trackingID)) {
			out = append(out, d)
		}
	}
	return out
}

// GetParcel dispatches to the adapter and guarantees a typed *Error on failure.
func (r *Registry) GetParcel(ctx context.Context, carrierID, trackingID, postalCode string) (p models.Parcel, err error) {
	a, ok := r.adapters[carrierID]
	if !ok {
		return models.Parcel{}, NewError(KindValidation, carrierID, fmt.Errorf("unknown carrier"))
	}
	trackingID = strings.TrimSpace(trackingID)
	postalCode = strings.TrimSpace(postalCode)
	if trackingID == "" {
		return models.Parcel{}, NewError(KindValidation, carrierID, fmt.Errorf("tracking id is required"))
	}
	d := a.Descriptor()
	if d.RequiresPostalCode && postalCode == "" {
		return models.Parcel{}, NewError(KindValidation, carrierID, fmt.Errorf("postal code is required"))
	}
	if !d.AcceptsPostalCode {
		postalCode = ""
	}

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("carrier adapter panic", "carrier", carrierID, "panic", fmt.Sprint(rec))
			p = models.Parcel{}
			err = NewError(KindUnsupportedResponse, carrierID, fmt.Errorf("panic: %v", rec))
		}
	}()

	p, err = a.GetParcel(ctx, trackingID, postalCode)
	if err != nil {
		return models.Parcel{}, Classify(carrierID, err)
	}
	return p, nil
}
