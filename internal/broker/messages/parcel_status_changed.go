package messages

import (
	"strconv"
	"time"

	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/google/uuid"
)

// ParcelStatusChanged публикуется фоновым обходом, когда статус посылки сменился.
type ParcelStatusChanged struct {
	EventID     string `json:"event_id"`
	ParcelRefID uint64 `json:"parcel_ref_id"`
	CarrierID   string `json:"carrier_id"`
	TrackingID  string `json:"tracking_id"`
	PostalCode  string `json:"postal_code,omitempty"`

	OldStatus models.Status `json:"old_status"`
	NewStatus models.Status `json:"new_status"`

	LastChange time.Time `json:"last_change"`
	DetectedAt time.Time `json:"detected_at"`
}

func NewParcelStatusChanged(ref models.ParcelRef, oldStatus, newStatus models.Status, lastChange, detectedAt time.Time) ParcelStatusChanged {
	return ParcelStatusChanged{
		EventID:     uuid.NewString(),
		ParcelRefID: ref.ID,
		CarrierID:   ref.CarrierID,
		TrackingID:  ref.TrackingID,
		PostalCode:  ref.PostalCodeValue(),
		OldStatus:   oldStatus,
		NewStatus:   newStatus,
		LastChange:  lastChange,
		DetectedAt:  detectedAt,
	}
}

// Key партиционирует по посылке, чтобы события одной посылки шли по порядку.
func (m ParcelStatusChanged) Key() []byte {
	return []byte(strconv.FormatUint(m.ParcelRefID, 10))
}
