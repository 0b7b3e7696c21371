// Package carriers собирает реестр из всех встроенных адаптеров.
package carriers

import (
	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/integrations/carrier/cainiao"
	"github.com/BearBump/ParcelBox/internal/integrations/carrier/colissimo"
	"github.com/BearBump/ParcelBox/internal/integrations/carrier/emulatorv1"
	"github.com/BearBump/ParcelBox/internal/integrations/carrier/expressone"
	"github.com/BearBump/ParcelBox/internal/integrations/carrier/fake"
	"github.com/BearBump/ParcelBox/internal/integrations/carrier/imile"
	"github.com/BearBump/ParcelBox/internal/integrations/carrier/postnl"
	"github.com/BearBump/ParcelBox/internal/integrations/carrier/track24http"
	"github.com/BearBump/ParcelBox/internal/integrations/carrier/usps"
)

type Config struct {
	Options carrier.Options
	// BaseURLs overrides endpoints per carrier id.
	BaseURLs         map[string]string
	Track24Domain    string
	EmulatorUpstream string
}

func (c Config) opts(carrierID string) carrier.Options {
	o := c.Options
	o.BaseURL = c.BaseURLs[carrierID]
	return o
}

// Default returns the registry with every built-in carrier.
func Default(cfg Config) *carrier.Registry {
	if cfg.Options.HTTPClient == nil {
		cfg.Options.HTTPClient = carrier.NewHTTPClient(0)
	}
	upstream := cfg.EmulatorUpstream
	if upstream == "" {
		upstream = "CDEK"
	}
	return carrier.NewRegistry(
		cainiao.New(cfg.opts(cainiao.CarrierID)),
		colissimo.New(cfg.opts(colissimo.CarrierID)),
		expressone.New(cfg.opts(expressone.CarrierID)),
		imile.New(cfg.opts(imile.CarrierID)),
		postnl.New(cfg.opts(postnl.CarrierID)),
		usps.New(cfg.opts(usps.CarrierID)),
		track24http.New(cfg.opts(track24http.CarrierID), cfg.Track24Domain),
		emulatorv1.New(cfg.opts(emulatorv1.CarrierID), upstream),
		fake.New(cfg.Options.Zone),
	)
}
