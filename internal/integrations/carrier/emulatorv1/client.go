package emulatorv1

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/pkg/errors"
)

const (
	CarrierID      = "emulator"
	defaultBaseURL = "http://localhost:9000"
)

// Client ходит в локальный эмулятор перевозчиков. Статус верхнего уровня уже канонический.
type Client struct {
	opts     carrier.Options
	clock    carrier.Clock
	upstream string
}

var _ carrier.Adapter = (*Client)(nil)

// New binds the adapter to one upstream carrier code of the emulator (e.g. "CDEK").
func New(opts carrier.Options, upstream string) *Client {
	opts = opts.WithDefaults(defaultBaseURL)
	return &Client{opts: opts, clock: carrier.NewClock(opts.Zone), upstream: upstream}
}

func (c *Client) Descriptor() models.CarrierDescriptor {
	return models.CarrierDescriptor{ID: CarrierID, Name: "Carrier emulator"}
}

func (c *Client) AcceptsFormat(trackingID string) bool {
	return strings.TrimSpace(trackingID) != "" && !strings.ContainsAny(trackingID, "/?# ")
}

type respEvent struct {
	Status    string    `json:"status"`
	StatusRaw string    `json:"status_raw"`
	EventTime time.Time `json:"event_time"`
	Location  *string   `json:"location,omitempty"`
	Message   *string   `json:"message,omitempty"`
}

type respBody struct {
	Carrier     string      `json:"carrier"`
	TrackNumber string      `json:"track_number"`
	Status      string      `json:"status"`
	StatusRaw   string      `json:"status_raw"`
	StatusAt    time.Time   `json:"status_at"`
	Events      []respEvent `json:"events"`
}

func (c *Client) GetParcel(ctx context.Context, trackingID, _ string) (models.Parcel, error) {
	u, err := url.Parse(c.opts.BaseURL)
	if err != nil {
		return models.Parcel{}, errors.Wrap(err, "parse base url")
	}
	u = u.JoinPath("v1", "tracking", c.upstream, trackingID)
	if key, ok := apiKey(c.opts.Credentials); ok {
		q := u.Query()
		q.Set("apiKey", key)
		u.RawQuery = q.Encode()
	}

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

	var rb respBody
	if err := carrier.DecodeJSON(CarrierID, resp.Body, &rb); err != nil {
		return models.Parcel{}, err
	}

	events := make([]carrier.RawEvent, 0, len(rb.Events))
	for _, e := range rb.Events {
		desc := e.StatusRaw
		if e.Message != nil && *e.Message != "" {
			desc = *e.Message
		}
		var loc string
		if e.Location != nil {
			loc = *e.Location
		}
		events = append(events, carrier.RawEvent{
			Description: desc,
			Time:        e.EventTime.In(c.clock.Zone()),
			Location:    loc,
			Status:      parseStatus(e.Status),
		})
	}

	status := parseStatus(rb.Status)
	props := map[string]string{}
	if rb.Carrier != "" {
		props["Upstream carrier"] = rb.Carrier
	}
	return carrier.BuildParcel(CarrierID, trackingID, events, &status, props)
}

func parseStatus(name string) models.Status {
	if name == "" {
		return models.StatusUnknown
	}
	s, ok := models.ParseStatus(name)
	if !ok {
		carrier.LogUnknownStatus(CarrierID, name)
		return models.StatusUnknown
	}
	return s
}

func apiKey(creds carrier.Credentials) (string, bool) {
	if creds == nil {
		return "", false
	}
	key, ok := creds.APIKey(CarrierID)
	return key, ok && key != ""
}
