package usps

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/pkg/errors"
)

const (
	CarrierID      = "usps"
	defaultBaseURL = "https://apis.usps.com/"
)

var formats = []*regexp.Regexp{
	regexp.MustCompile(`^9[2-5]\d{20}$`),
	regexp.MustCompile(`^\d{20,22}$`),
	regexp.MustCompile(`^[A-Z]{2}\d{9}US$`),
}

// Client talks to the USPS tracking v3 API. The configured API key is sent as a
// bearer token as is; obtaining it (OAuth client credentials) happens outside.
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
	return models.CarrierDescriptor{ID: CarrierID, Name: "USPS", RequiresAPIKey: true}
}

func (c *Client) AcceptsFormat(trackingID string) bool {
	id := strings.ToUpper(strings.ReplaceAll(trackingID, " ", ""))
	for _, f := range formats {
		if f.MatchString(id) {
			return true
		}
	}
	return false
}

type trackingResponse struct {
	TrackingNumber       string          `json:"trackingNumber"`
	StatusCategory       string          `json:"statusCategory"`
	Status               string          `json:"status"`
	ExpectedDeliveryDate string          `json:"expectedDeliveryDate"`
	MailClass            string          `json:"mailClass"`
	TrackingEvents       []trackingEvent `json:"trackingEvents"`
}

type trackingEvent struct {
	EventType      string `json:"eventType"`
	EventTimestamp string `json:"eventTimestamp"`
	EventCode      string `json:"eventCode"`
	EventCity      string `json:"eventCity"`
	EventState     string `json:"eventState"`
	EventCountry   string `json:"eventCountry"`
}

func (c *Client) GetParcel(ctx context.Context, trackingID, _ string) (models.Parcel, error) {
	// ключ проверяется до любого сетевого вызова
	key, err := carrier.RequireAPIKey(c.opts.Credentials, CarrierID)
	if err != nil {
		return models.Parcel{}, err
	}

	endpoint, err := url.JoinPath(c.opts.BaseURL, "tracking/v3/tracking", trackingID)
	if err != nil {
		return models.Parcel{}, errors.Wrap(err, "join url")
	}
	endpoint += "?" + url.Values{"expand": {"DETAIL"}}.Encode()

	req, err := carrier.NewRequest(ctx, endpoint)
	if err != nil {
		return models.Parcel{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)
	resp, err := carrier.Do(c.opts.HTTPClient, CarrierID, req)
	if err != nil {
		return models.Parcel{}, err
	}
	if !resp.OK() {
		return models.Parcel{}, carrier.StatusError(CarrierID, resp.StatusCode)
	}

	var body trackingResponse
	if err := carrier.DecodeJSON(CarrierID, resp.Body, &body); err != nil {
		return models.Parcel{}, err
	}

	events := make([]carrier.RawEvent, 0, len(body.TrackingEvents))
	for _, e := range body.TrackingEvents {
		t, err := c.clock.ParseISO(e.EventTimestamp)
		if err != nil {
			return models.Parcel{}, carrier.NewError(carrier.KindUnsupportedResponse, CarrierID, err)
		}
		events = append(events, carrier.RawEvent{
			Description: strings.TrimSpace(e.EventType),
			Time:        t,
			Location:    joinLocation(e.EventCity, e.EventState, e.EventCountry),
			Status:      codeToStatus(e.EventCode),
		})
	}

	var authoritative *models.Status
	if s, ok := categoryTable[strings.ToLower(body.StatusCategory)]; ok {
		authoritative = &s
	}

	props := map[string]string{}
	if body.MailClass != "" {
		props["Mail class"] = body.MailClass
	}
	if body.ExpectedDeliveryDate != "" {
		props["Expected delivery"] = body.ExpectedDeliveryDate
	}
	return carrier.BuildParcel(CarrierID, trackingID, events, authoritative, props)
}

func joinLocation(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
