package usps

import (
	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/models"
)

var eventTable = carrier.StatusTable{}.
	Group(models.StatusPreadvice, "GX", "MA").
	Group(models.StatusPickedUpByCourier, "03", "OA", "80", "81").
	Group(models.StatusInTransit, "10", "L1", "T1", "NT", "82", "83", "PC").
	Group(models.StatusInWarehouse, "07", "U1", "A1").
	Group(models.StatusCustoms, "CI", "IA").
	Group(models.StatusCustomsHeld, "CH", "CR").
	Group(models.StatusCustomsSuccess, "CD").
	Group(models.StatusOutForDelivery, "OF", "59").
	Group(models.StatusAwaitingPickup, "16", "52", "15").
	Group(models.StatusDelivered, "01", "17", "DX", "60").
	Group(models.StatusDeliveryFailure, "02", "04", "05", "14", "53", "55", "56").
	Group(models.StatusReturningToSender, "09", "21", "28", "29", "31", "32", "33").
	Group(models.StatusDestroyed, "DE")

// statusCategory is the summary USPS computes for the whole shipment.
var categoryTable = map[string]models.Status{
	"pre-shipment":         models.StatusPreadvice,
	"accepted":             models.StatusPickedUpByCourier,
	"in transit":           models.StatusInTransit,
	"out for delivery":     models.StatusOutForDelivery,
	"available for pickup": models.StatusAwaitingPickup,
	"delivered":            models.StatusDelivered,
	"delivery attempt":     models.StatusDeliveryFailure,
	"return to sender":     models.StatusReturningToSender,
}

func codeToStatus(code string) models.Status {
	return eventTable.Lookup(CarrierID, code)
}
