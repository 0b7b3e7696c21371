package imile

import (
	"strconv"

	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/models"
)

var stageTable = carrier.StatusTable{
	"1001": models.StatusPreadvice,
	"1002": models.StatusInTransit,
	"1003": models.StatusOutForDelivery,
	"2004": models.StatusInWarehouse,
}

func stageToStatus(stage int) models.Status {
	return stageTable.Lookup(CarrierID, strconv.Itoa(stage))
}
