package fake

import (
	"context"
	"hash/fnv"
	"strings"
	"time"

	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/pkg/errors"
)

const CarrierID = "demo"

// Demo — детерминированный перевозчик без сети для демо-режима и локальной разработки.
// Одинаковый трек всегда даёт одинаковую историю.
type Demo struct {
	zone *time.Location
}

var _ carrier.Adapter = (*Demo)(nil)

func New(zone *time.Location) *Demo {
	if zone == nil {
		zone = time.Local
	}
	return &Demo{zone: zone}
}

type step struct {
	status   models.Status
	text     string
	location string
}

var journey = []step{
	{models.StatusPreadvice, "Shipment information received", "Shenzhen"},
	{models.StatusPickedUpByCourier, "Picked up by courier", "Shenzhen"},
	{models.StatusInWarehouse, "Arrived at sorting center", "Shenzhen"},
	{models.StatusInTransit, "Departed from origin country", "Hong Kong"},
	{models.StatusCustoms, "Customs clearance started", "Warsaw"},
	{models.StatusCustomsSuccess, "Customs clearance completed", "Warsaw"},
	{models.StatusOutForDelivery, "Out for delivery", "Warsaw"},
	{models.StatusDelivered, "Delivered", "Warsaw"},
}

var demoEpoch = time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)

func (d *Demo) Descriptor() models.CarrierDescriptor {
	return models.CarrierDescriptor{ID: CarrierID, Name: "Demo carrier"}
}

func (d *Demo) AcceptsFormat(trackingID string) bool {
	return strings.HasPrefix(strings.ToUpper(trackingID), "DEMO")
}

func (d *Demo) GetParcel(ctx context.Context, trackingID, _ string) (models.Parcel, error) {
	if err := ctx.Err(); err != nil {
		return models.Parcel{}, err
	}
	if strings.HasSuffix(trackingID, "404") {
		return models.Parcel{}, carrier.NewError(carrier.KindNotFound, CarrierID, errors.New("demo parcel does not exist"))
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(trackingID))
	v := h.Sum32()

	// сколько шагов пути уже пройдено
	reached := int(v%uint32(len(journey))) + 1
	start := demoEpoch.Add(time.Duration(v%30) * 24 * time.Hour)

	events := make([]carrier.RawEvent, 0, reached)
	for i := 0; i < reached; i++ {
		s := journey[i]
		events = append(events, carrier.RawEvent{
			Description: s.text,
			Time:        start.Add(time.Duration(i) * 18 * time.Hour).In(d.zone),
			Location:    s.location,
			Status:      s.status,
		})
	}
	return carrier.BuildParcel(CarrierID, trackingID, events, nil, map[string]string{"Mode": "demo"})
}
