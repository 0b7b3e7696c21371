package colissimo

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"

	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/pkg/errors"
)

const (
	CarrierID      = "colissimo"
	defaultBaseURL = "https://www.laposte.fr/ssu/sun/back/suivi-unifie/"
	fallbackLang   = "en"
)

var format = regexp.MustCompile(`^[A-Za-z0-9]{11,15}$`)

type Client struct {
	opts  carrier.Options
	clock carrier.Clock
}

var _ carrier.Adapter = (*Client)(nil)

func New(opts carrier.Options) *Client {
	opts = opts.WithDefaults(defaultBaseURL)
	return &Client{opts: opts, clock: carrier.NewClock(opts.Zone)}
}

func (c *Client) Descriptor() models.CarrierDescriptor {
	return models.CarrierDescriptor{ID: CarrierID, Name: "Colissimo"}
}

func (c *Client) AcceptsFormat(trackingID string) bool {
	return format.MatchString(trackingID)
}

type shipmentResponse struct {
	Shipment *shipment `json:"shipment"`
}

type shipment struct {
	IDShip  string  `json:"idShip"`
	Product string  `json:"product"`
	Event   []event `json:"event"`
}

type event struct {
	Code    string `json:"code"`
	Type    string `json:"type"`
	Group   string `json:"group"`
	Label   string `json:"label"`
	Date    string `json:"date"`
	Country string `json:"country"`
	Order   int    `json:"order"`
}

func (c *Client) GetParcel(ctx context.Context, trackingID, _ string) (models.Parcel, error) {
	resp, err := c.fetch(ctx, trackingID, c.opts.Language)
	if err != nil {
		return models.Parcel{}, err
	}
	if unavailable(resp.StatusCode) {
		return models.Parcel{}, carrier.StatusError(CarrierID, resp.StatusCode)
	}
	if !resp.OK() {
		if c.opts.Language == fallbackLang {
			return models.Parcel{}, carrier.NewError(carrier.KindNotFound, CarrierID, errors.Errorf("http %d", resp.StatusCode))
		}
		// Один повтор с языком по умолчанию; сетевые ошибки не повторяем.
		slog.Debug("colissimo retry with fallback language", "lang", c.opts.Language, "http", resp.StatusCode)
		resp, err = c.fetch(ctx, trackingID, fallbackLang)
		if err != nil {
			return models.Parcel{}, err
		}
		if unavailable(resp.StatusCode) {
			return models.Parcel{}, carrier.StatusError(CarrierID, resp.StatusCode)
		}
		if !resp.OK() {
			return models.Parcel{}, carrier.NewError(carrier.KindNotFound, CarrierID, errors.Errorf("http %d", resp.StatusCode))
		}
	}

	var body []shipmentResponse
	if err := carrier.DecodeJSON(CarrierID, resp.Body, &body); err != nil {
		return models.Parcel{}, err
	}
	return c.toParcel(trackingID, body)
}

// unavailable: сбой сервиса, а не ответ про посылку; повтор с другим языком не поможет.
func unavailable(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests
}

func (c *Client) fetch(ctx context.Context, trackingID, lang string) (carrier.Response, error) {
	u, err := url.Parse(c.opts.BaseURL)
	if err != nil {
		return carrier.Response{}, errors.Wrap(err, "parse base url")
	}
	u = u.JoinPath(trackingID)
	q := u.Query()
	q.Set("lang", lang)
	u.RawQuery = q.Encode()

	req, err := carrier.NewRequest(ctx, u.String())
	if err != nil {
		return carrier.Response{}, err
	}
	req.Header.Set("Accept", "application/json")
	return carrier.Do(c.opts.HTTPClient, CarrierID, req)
}

func (c *Client) toParcel(trackingID string, body []shipmentResponse) (models.Parcel, error) {
	if len(body) == 0 {
		return models.Parcel{}, carrier.NewError(carrier.KindNotFound, CarrierID, errors.New("no shipments"))
	}
	sh := body[0].Shipment
	if sh == nil {
		return models.Parcel{}, carrier.NewError(carrier.KindUnsupportedResponse, CarrierID, errors.New("shipment is missing"))
	}

	events := make([]carrier.RawEvent, 0, len(sh.Event))
	for _, e := range sh.Event {
		t, err := c.clock.ParseISO(e.Date)
		if err != nil {
			return models.Parcel{}, carrier.NewError(carrier.KindUnsupportedResponse, CarrierID, err)
		}
		events = append(events, carrier.RawEvent{
			Description: e.Label,
			Time:        t,
			Location:    e.Country,
			Status:      codeToStatus(e.Code),
			Order:       e.Order,
		})
	}

	id := sh.IDShip
	if id == "" {
		id = trackingID
	}
	props := map[string]string{}
	if sh.Product != "" {
		props["Product"] = sh.Product
	}
	return carrier.BuildParcel(CarrierID, id, events, nil, props)
}
