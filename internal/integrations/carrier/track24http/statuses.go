package track24http

import (
	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/models"
)

// Первое совпадение выигрывает: "прибыло в место вручения" должно сработать раньше "вручен".
var statusRules = carrier.KeywordRules{
	Rules: []carrier.KeywordRule{
		{Status: models.StatusAwaitingPickup, Keywords: []string{"прибыло в место вручения", "ожидает адресата", "awaiting pickup", "ready for pickup"}},
		{Status: models.StatusDelivered, Keywords: []string{"вручен", "вручение", "delivered"}},
		{Status: models.StatusReturningToSender, Keywords: []string{"возврат", "return"}},
		{Status: models.StatusDeliveryFailure, Keywords: []string{"неудачная попытка", "failed attempt"}},
		{Status: models.StatusOutForDelivery, Keywords: []string{"передано почтальону", "out for delivery"}},
		{Status: models.StatusCustomsHeld, Keywords: []string{"задержано таможней", "customs hold"}},
		{Status: models.StatusCustomsSuccess, Keywords: []string{"выпущено таможней", "customs cleared"}},
		{Status: models.StatusCustoms, Keywords: []string{"таможен", "customs"}},
		{Status: models.StatusInWarehouse, Keywords: []string{"сортировочный центр", "arrived at"}},
		{Status: models.StatusPreadvice, Keywords: []string{"присвоен трек", "электронные данные", "pre-advice"}},
		{Status: models.StatusPickedUpByCourier, Keywords: []string{"приём", "прием", "accepted"}},
	},
	Default: models.StatusInTransit,
}

func textToStatus(text string) models.Status {
	return statusRules.Match(text)
}
