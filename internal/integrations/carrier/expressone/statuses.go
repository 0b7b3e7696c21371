package expressone

import (
	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/models"
)

// Порядок важен: первое совпадение выигрывает.
var statusRules = carrier.KeywordRules{
	Rules: []carrier.KeywordRule{
		{Status: models.StatusDelivered, Keywords: []string{"kézbesítve", "delivered"}},
		{Status: models.StatusOutForDelivery, Keywords: []string{"kiszállítás", "out for delivery", "kiadva futárnak"}},
		{Status: models.StatusInWarehouse, Keywords: []string{"depóba érkezett", "arrived at depot"}},
		{Status: models.StatusInTransit, Keywords: []string{"feldolgozás", "processing", "átszállítás"}},
		{Status: models.StatusAwaitingPickup, Keywords: []string{"átvétel", "pickup"}},
	},
	Default: models.StatusInTransit,
}

func textToStatus(text string) models.Status {
	return statusRules.Match(text)
}
