package track24http

import (
	"context"
	"net/url"
	"strings"

	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/pkg/errors"
)

const (
	CarrierID      = "track24"
	defaultBaseURL = "https://api.track24.ru/"
	// Track24 пример: "02.07.2014 19:16:00"
	timeLayout = "02.01.2006 15:04:05"
)

// Client is the Track24 aggregator. Carrier is autodetected by Track24 from the code.
type Client struct {
	opts   carrier.Options
	clock  carrier.Clock
	domain string
}

var _ carrier.Adapter = (*Client)(nil)

func New(opts carrier.Options, domain string) *Client {
	opts = opts.WithDefaults(defaultBaseURL)
	return &Client{opts: opts, clock: carrier.NewClock(opts.Zone), domain: domain}
}

func (c *Client) Descriptor() models.CarrierDescriptor {
	return models.CarrierDescriptor{ID: CarrierID, Name: "Track24", RequiresAPIKey: true}
}

// AcceptsFormat: агрегатор принимает почти любой код, отсекаем только явный мусор.
func (c *Client) AcceptsFormat(trackingID string) bool {
	if len(trackingID) < 8 || len(trackingID) > 40 {
		return false
	}
	for _, r := range trackingID {
		if !(r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z') {
			return false
		}
	}
	return true
}

type track24Resp struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		DestinationCountry string `json:"destinationCountry"`
		FromCountry        string `json:"fromCountry"`
		Events             []struct {
			OperationDateTime        string `json:"operationDateTime"`
			OperationAttribute       string `json:"operationAttribute"`
			OperationType            string `json:"operationType"`
			OperationPlaceName       string `json:"operationPlaceName"`
			OperationPlacePostalCode string `json:"operationPlacePostalCode"`
			Source                   string `json:"source"`
		} `json:"events"`
	} `json:"data"`
}

func (c *Client) GetParcel(ctx context.Context, trackingID, _ string) (models.Parcel, error) {
	apiKey, err := carrier.RequireAPIKey(c.opts.Credentials, CarrierID)
	if err != nil {
		return models.Parcel{}, err
	}

	u, err := url.Parse(c.opts.BaseURL)
	if err != nil {
		return models.Parcel{}, errors.Wrap(err, "parse base url")
	}
	u = u.JoinPath("tracking.json.php")

	q := u.Query()
	q.Set("apiKey", apiKey)
	q.Set("domain", c.domain)
	q.Set("code", trackingID)
	q.Set("lng", c.opts.Language)
	u.RawQuery = q.Encode()

	req, err := carrier.NewRequest(ctx, u.String())
	if err != nil {
		return models.Parcel{}, err
	}
	resp, err := carrier.Do(c.opts.HTTPClient, CarrierID, req)
	if err != nil {
		return models.Parcel{}, err
	}
	if !resp.OK() {
		return models.Parcel{}, carrier.StatusError(CarrierID, resp.StatusCode)
	}

	var r track24Resp
	if err := carrier.DecodeJSON(CarrierID, resp.Body, &r); err != nil {
		return models.Parcel{}, err
	}
	if r.Status != "ok" {
		return models.Parcel{}, carrier.NewError(carrier.KindNotFound, CarrierID,
			errors.Errorf("track24 status=%s: %s", r.Status, r.Message))
	}

	// события приходят от старых к новым
	events := make([]carrier.RawEvent, 0, len(r.Data.Events))
	for i, e := range r.Data.Events {
		t, err := c.clock.ParseLocal(timeLayout, e.OperationDateTime)
		if err != nil {
			return models.Parcel{}, carrier.NewError(carrier.KindUnsupportedResponse, CarrierID, err)
		}
		loc := strings.TrimSpace(e.OperationPlaceName)
		if loc != "" && e.OperationPlacePostalCode != "" {
			loc = e.OperationPlacePostalCode + " " + loc
		}
		events = append(events, carrier.RawEvent{
			Description: strings.TrimSpace(e.OperationAttribute),
			Time:        t,
			Location:    loc,
			Status:      textToStatus(e.OperationAttribute + " " + e.OperationType),
			Order:       i + 1,
		})
	}

	props := map[string]string{}
	if r.Data.FromCountry != "" {
		props["Origin country"] = r.Data.FromCountry
	}
	if r.Data.DestinationCountry != "" {
		props["Destination country"] = r.Data.DestinationCountry
	}
	return carrier.BuildParcel(CarrierID, trackingID, events, nil, props)
}
