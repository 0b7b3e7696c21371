package models

import (
	"time"

	"github.com/pkg/errors"
)

var (
	ErrParcelNotFound   = errors.New("parcel not found")
	ErrSnapshotNotFound = errors.New("status snapshot not found")
)

type HistoryEvent struct {
	Description string    `json:"description"`
	Time        time.Time `json:"time"`
	Location    string    `json:"location"`
}

// Parcel — каноническая запись трекинга. Создаётся заново при каждом успешном запросе
// и дальше не меняется.
type Parcel struct {
	TrackingID    string            `json:"trackingId"`
	CurrentStatus Status            `json:"currentStatus"`
	History       []HistoryEvent    `json:"history"`
	Properties    map[string]string `json:"properties,omitempty"`
}

// LastChange returns the timestamp of the newest history event.
func (p Parcel) LastChange() (time.Time, bool) {
	if len(p.History) == 0 {
		return time.Time{}, false
	}
	return p.History[0].Time, true
}

// ParcelRef is a parcel saved by the user.
type ParcelRef struct {
	ID                     uint64    `json:"id"`
	HumanName              string    `json:"humanName"`
	TrackingID             string    `json:"trackingId"`
	CarrierID              string    `json:"carrierId"`
	PostalCode             *string   `json:"postalCode,omitempty"`
	IsArchived             bool      `json:"isArchived"`
	ArchivePromptDismissed bool      `json:"archivePromptDismissed"`
	CreatedAt              time.Time `json:"createdAt"`

	// состояние фонового обхода
	NextCheckAt    time.Time `json:"-"`
	CheckFailCount int32     `json:"-"`
}

func (r ParcelRef) PostalCodeValue() string {
	if r.PostalCode == nil {
		return ""
	}
	return *r.PostalCode
}

type ParcelRefCreateInput struct {
	HumanName  string
	TrackingID string
	CarrierID  string
	PostalCode *string
}

// StatusSnapshot — последний известный статус, не более одного на ParcelRef.
type StatusSnapshot struct {
	ParcelRefID         uint64    `json:"parcelRefId"`
	LastStatus          Status    `json:"lastStatus"`
	LastChangeTimestamp time.Time `json:"lastChangeTimestamp"`
}

type CarrierDescriptor struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	AcceptsPostalCode  bool   `json:"acceptsPostalCode"`
	RequiresPostalCode bool   `json:"requiresPostalCode"`
	RequiresAPIKey     bool   `json:"requiresApiKey"`
}
