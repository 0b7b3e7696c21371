package colissimo

import (
	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/models"
)

var statusTable = carrier.StatusTable{
	"DR1": models.StatusPreadvice,       // déclaratif reçu
	"DR2": models.StatusDeliveryFailure, // problème lors de la préparation
	"PC1": models.StatusInWarehouse,
	"PC2": models.StatusInWarehouse,
	"ET1": models.StatusInTransit,
	"ET2": models.StatusInTransit,
	"ET3": models.StatusInTransit,
	"ET4": models.StatusInTransit,
	"EP1": models.StatusUnknown, // en attente de présentation
	"DO1": models.StatusCustoms,
	"DO2": models.StatusCustomsSuccess,
	"DO3": models.StatusCustomsHeld,
	"PB1": models.StatusUnknown,
	"PB2": models.StatusUnknown,
	"MD2": models.StatusOutForDelivery,
	"ND1": models.StatusDeliveryFailure,
	"AG1": models.StatusAwaitingPickup,
	"RE1": models.StatusReturningToSender,
	"DI0": models.StatusDelivered,
	"DI1": models.StatusDelivered,
	"DI2": models.StatusReturningToSender, // distribué à l'expéditeur
	"DI3": models.StatusOutForDelivery,   // retardé
	"ID0": models.StatusCustoms,
}

func codeToStatus(code string) models.Status {
	return statusTable.Lookup(CarrierID, code)
}
