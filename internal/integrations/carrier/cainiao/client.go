package cainiao

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const (
	CarrierID      = "cainiao"
	defaultBaseURL = "https://global.cainiao.com/global/"
)

var formats = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z]{2}\d{9}[A-Z]{2}$`),
	regexp.MustCompile(`^LP\d{12,16}$`),
	regexp.MustCompile(`^CN[A-Z0-9]{10,20}$`),
	regexp.MustCompile(`^CAINIAO[A-Z0-9]{8,}$`),
}

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
	return models.CarrierDescriptor{ID: CarrierID, Name: "Cainiao"}
}

func (c *Client) AcceptsFormat(trackingID string) bool {
	id := strings.ToUpper(trackingID)
	for _, re := range formats {
		if re.MatchString(id) {
			return true
		}
	}
	return false
}

func (c *Client) GetParcel(ctx context.Context, trackingID, _ string) (models.Parcel, error) {
	u, err := url.Parse(c.opts.BaseURL)
	if err != nil {
		return models.Parcel{}, errors.Wrap(err, "parse base url")
	}
	u = u.JoinPath("detail.json")
	q := u.Query()
	q.Set("mailNos", trackingID)
	q.Set("lang", c.opts.Language)
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
	return c.parse(trackingID, resp.Body)
}

func (c *Client) parse(trackingID string, body []byte) (models.Parcel, error) {
	if !gjson.ValidBytes(body) {
		return models.Parcel{}, carrier.NewError(carrier.KindUnsupportedResponse, CarrierID, errors.New("invalid json"))
	}
	module := gjson.GetBytes(body, "module")
	if !module.IsArray() {
		return models.Parcel{}, carrier.NewError(carrier.KindUnsupportedResponse, CarrierID, errors.New("module is not a list"))
	}
	shipment := module.Get("0")
	if !shipment.Exists() {
		return models.Parcel{}, carrier.NewError(carrier.KindNotFound, CarrierID, errors.New("empty module"))
	}
	details := shipment.Get("detailList")
	if details.Exists() && !details.IsArray() {
		return models.Parcel{}, carrier.NewError(carrier.KindUnsupportedResponse, CarrierID, errors.New("detailList is not a list"))
	}

	var (
		events []carrier.RawEvent
		bad    error
	)
	details.ForEach(func(_, ev gjson.Result) bool {
		ts := ev.Get("time")
		if ts.Type != gjson.Number {
			bad = errors.Errorf("event time %q is not a number", ts.Raw)
			return false
		}
		location, desc := carrier.ExtractBracketLocation(ev.Get("standerdDesc").String())
		if desc == "" {
			desc = ev.Get("desc").String()
		}
		events = append(events, carrier.RawEvent{
			Description: desc,
			Time:        c.clock.FromEpochMillis(ts.Int()),
			Location:    location,
			Status:      codeToStatus(ev.Get("actionCode").String()),
		})
		return true
	})
	if bad != nil {
		return models.Parcel{}, carrier.NewError(carrier.KindUnsupportedResponse, CarrierID, bad)
	}

	props := map[string]string{}
	if v := shipment.Get("originCountry").String(); v != "" {
		props["Origin country"] = v
	}
	if v := shipment.Get("destCountry").String(); v != "" {
		props["Destination country"] = v
	}
	return carrier.BuildParcel(CarrierID, trackingID, events, nil, props)
}
