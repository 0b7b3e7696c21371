package cainiao

import (
	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/models"
)

var statusTable = carrier.StatusTable{
	"PU_PICKUP_SUCCESS":   models.StatusPreadvice,
	"GWMS_ACCEPT":         models.StatusInWarehouse,
	"SC_INBOUND_SUCCESS":  models.StatusInWarehouse,
	"CW_INBOUND":          models.StatusInWarehouse,
	"SC_OUTBOUND_SUCCESS": models.StatusInTransit,
	"GWMS_OUTBOUND":       models.StatusInTransit,
	"LH_HO_IN_SUCCESS":    models.StatusInTransit,
	"LH_HO_AIRLINE":       models.StatusInTransit,
	"LH_ARRIVE":           models.StatusInTransit,
	"CC_EX_START":         models.StatusCustoms,
	"CC_EX_SUCCESS":       models.StatusCustomsSuccess,
	"CC_IM_START":         models.StatusCustoms,
	"CC_IM_SUCCESS":       models.StatusCustomsSuccess,
	"GTMS_DO_DEPART":      models.StatusOutForDelivery,
	"GTMS_SIGNED":         models.StatusDelivered,
	"SIGNIN":              models.StatusDelivered,
}

func codeToStatus(code string) models.Status {
	return statusTable.Lookup(CarrierID, code)
}
