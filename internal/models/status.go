package models

import "strings"

// Status — нормализованный статус посылки, общий для всех перевозчиков.
type Status int

const (
	StatusUnknown Status = iota
	StatusPreadvice
	StatusPickedUp
	StatusPickedUpByCourier
	StatusInWarehouse
	StatusInTransit
	StatusCustoms
	StatusCustomsHeld
	StatusCustomsSuccess
	StatusOutForDelivery
	StatusAwaitingPickup
	StatusDelivered
	StatusDeliveryFailure
	StatusReturningToSender
	StatusDestroyed

	// Синтетические статусы: только для отображения ошибок, таблицы перевозчиков их не выдают.
	StatusNetworkFailure
	StatusNoData
)

var statusNames = [...]string{
	StatusUnknown:           "UNKNOWN",
	StatusPreadvice:         "PREADVICE",
	StatusPickedUp:          "PICKED_UP",
	StatusPickedUpByCourier: "PICKED_UP_BY_COURIER",
	StatusInWarehouse:       "IN_WAREHOUSE",
	StatusInTransit:         "IN_TRANSIT",
	StatusCustoms:           "CUSTOMS",
	StatusCustomsHeld:       "CUSTOMS_HELD",
	StatusCustomsSuccess:    "CUSTOMS_SUCCESS",
	StatusOutForDelivery:    "OUT_FOR_DELIVERY",
	StatusAwaitingPickup:    "AWAITING_PICKUP",
	StatusDelivered:         "DELIVERED",
	StatusDeliveryFailure:   "DELIVERY_FAILURE",
	StatusReturningToSender: "RETURNING_TO_SENDER",
	StatusDestroyed:         "DESTROYED",
	StatusNetworkFailure:    "NETWORK_FAILURE",
	StatusNoData:            "NO_DATA",
}

// AllStatuses returns every status in declaration order.
func AllStatuses() []Status {
	out := make([]Status, 0, len(statusNames))
	for i := range statusNames {
		out = append(out, Status(i))
	}
	return out
}

func (s Status) String() string {
	if !s.Valid() {
		return statusNames[StatusUnknown]
	}
	return statusNames[s]
}

func (s Status) Valid() bool {
	return s >= StatusUnknown && int(s) < len(statusNames)
}

// Synthetic reports whether the status is a client-local error status.
func (s Status) Synthetic() bool {
	return s == StatusNetworkFailure || s == StatusNoData
}

// Final reports whether the parcel reached the end of its journey.
func (s Status) Final() bool {
	return s == StatusDelivered || s == StatusPickedUp || s == StatusDestroyed
}

// ParseStatus accepts both "IN_TRANSIT" and "in_transit"; unknown names yield StatusUnknown.
func ParseStatus(name string) (Status, bool) {
	n := strings.ToUpper(strings.TrimSpace(name))
	for i, v := range statusNames {
		if v == n {
			return Status(i), true
		}
	}
	return StatusUnknown, false
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	*s, _ = ParseStatus(string(b))
	return nil
}
