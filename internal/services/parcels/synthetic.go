package parcels

import (
	"time"

	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/models"
)

const (
	DescNoData      = "Parcel doesn't exist"
	DescNetwork     = "Network failure"
	DescAPIKey      = "Missing API key"
	DescUnsupported = "Unsupported carrier response"
)

// SyntheticParcel строит отображаемый результат для ошибки перевозчика.
// Такой Parcel никогда не сохраняется.
func SyntheticParcel(trackingID string, err error, now time.Time) models.Parcel {
	status, desc := models.StatusNetworkFailure, DescNetwork

	kind, _ := carrier.KindOf(err)
	switch kind {
	case carrier.KindNotFound, carrier.KindValidation:
		status, desc = models.StatusNoData, DescNoData
	case carrier.KindAPIKeyMissing:
		desc = DescAPIKey
	case carrier.KindUnsupportedResponse:
		desc = DescUnsupported
	}

	return models.Parcel{
		TrackingID:    trackingID,
		CurrentStatus: status,
		History:       []models.HistoryEvent{{Description: desc, Time: now}},
	}
}
