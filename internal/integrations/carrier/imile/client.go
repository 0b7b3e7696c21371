package imile

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
	CarrierID      = "imile"
	defaultBaseURL = "https://www.imile.com/"
	timeLayout     = "2006-01-02 15:04:05"
)

var formats = []*regexp.Regexp{
	regexp.MustCompile(`^\d{10,16}$`),
	regexp.MustCompile(`^[A-Z]{2,4}\d{8,14}$`),
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
	return models.CarrierDescriptor{ID: CarrierID, Name: "iMile"}
}

func (c *Client) AcceptsFormat(trackingID string) bool {
	id := strings.ToUpper(trackingID)
	for _, f := range formats {
		if f.MatchString(id) {
			return true
		}
	}
	return false
}

type queryResponse struct {
	Status       string        `json:"status"`
	ResultCode   string        `json:"resultCode"`
	Message      string        `json:"message"`
	ResultObject *resultObject `json:"resultObject"`
}

type resultObject struct {
	WaybillNo       string      `json:"waybillNo"`
	SendSite        string      `json:"sendSite"`
	DispatchStation string      `json:"dispatchStation"`
	Country         string      `json:"country"`
	TrackInfos      []trackInfo `json:"trackInfos"`
}

type trackInfo struct {
	Content            string `json:"content"`
	TrackStage         int    `json:"trackStage"`
	TrackStageTx       string `json:"trackStageTx"`
	Time               string `json:"time"`
	OperateStationName string `json:"operateStationName"`
}

func (c *Client) GetParcel(ctx context.Context, trackingID, _ string) (models.Parcel, error) {
	endpoint, err := url.JoinPath(c.opts.BaseURL, "saastms/mobileWeb/track/query")
	if err != nil {
		return models.Parcel{}, errors.Wrap(err, "join url")
	}
	endpoint += "?" + url.Values{"waybillNo": {trackingID}}.Encode()

	req, err := carrier.NewRequest(ctx, endpoint)
	if err != nil {
		return models.Parcel{}, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := carrier.Do(c.opts.HTTPClient, CarrierID, req)
	if err != nil {
		return models.Parcel{}, err
	}
	if !resp.OK() {
		return models.Parcel{}, carrier.StatusError(CarrierID, resp.StatusCode)
	}

	var body queryResponse
	if err := carrier.DecodeJSON(CarrierID, resp.Body, &body); err != nil {
		return models.Parcel{}, err
	}
	if body.Status != "success" || body.ResultObject == nil {
		return models.Parcel{}, carrier.NewError(carrier.KindNotFound, CarrierID,
			errors.Errorf("status %q, code %q: %s", body.Status, body.ResultCode, body.Message))
	}

	events := make([]carrier.RawEvent, 0, len(body.ResultObject.TrackInfos))
	for i, info := range body.ResultObject.TrackInfos {
		t, err := c.clock.ParseLocal(timeLayout, info.Time)
		if err != nil {
			return models.Parcel{}, carrier.NewError(carrier.KindUnsupportedResponse, CarrierID, err)
		}
		events = append(events, carrier.RawEvent{
			Description: strings.TrimSpace(info.Content),
			Time:        t,
			Location:    strings.TrimSpace(info.OperateStationName),
			Status:      stageToStatus(info.TrackStage),
			// карточки приходят от новых к старым
			Order: len(body.ResultObject.TrackInfos) - i,
		})
	}

	props := map[string]string{}
	if s := strings.TrimSpace(body.ResultObject.DispatchStation); s != "" {
		props["Dispatch station"] = s
	}
	if s := strings.TrimSpace(body.ResultObject.Country); s != "" {
		props["Country"] = s
	}
	return carrier.BuildParcel(CarrierID, trackingID, events, nil, props)
}
