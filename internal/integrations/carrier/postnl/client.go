package postnl

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/pkg/errors"
)

const (
	CarrierID      = "postnl"
	defaultBaseURL = "https://jouw.postnl.nl/track-and-trace/api/"

	// TODO: доставки за пределы Нидерландов требуют другой код страны в ключе запроса.
	destinationCountry = "NL"
	etaLayout          = "2006-01-02 15:04"
)

var formats = []*regexp.Regexp{
	regexp.MustCompile(`^3S[A-Z0-9]{8,20}$`),
	regexp.MustCompile(`^[A-Z]{2}\d{9}NL$`),
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
	return models.CarrierDescriptor{
		ID:                 CarrierID,
		Name:               "PostNL",
		AcceptsPostalCode:  true,
		RequiresPostalCode: true,
	}
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

type trackResponse struct {
	Colli map[string]colli `json:"colli"`
}

type colli struct {
	AnalyticsInfo struct {
		AllObservations []observation `json:"allObservations"`
	} `json:"analyticsInfo"`
	Eta *eta `json:"eta"`
}

type observation struct {
	ObservationDate string  `json:"observationDate"`
	ObservationCode string  `json:"observationCode"`
	Description     *string `json:"description"`
}

type eta struct {
	Type  string `json:"type"`
	Start string `json:"start"`
	End   string `json:"end"`
}

func (c *Client) GetParcel(ctx context.Context, trackingID, postalCode string) (models.Parcel, error) {
	postal := normalizePostalCode(postalCode)
	if postal == "" {
		return models.Parcel{}, carrier.NewError(carrier.KindValidation, CarrierID, errors.New("postal code is required"))
	}

	key := fmt.Sprintf("%s-%s-%s", trackingID, destinationCountry, postal)
	endpoint, err := url.JoinPath(c.opts.BaseURL, "trackAndTrace", key)
	if err != nil {
		return models.Parcel{}, errors.Wrap(err, "join url")
	}
	endpoint += "?" + url.Values{"language": {c.opts.Language}}.Encode()

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
		if resp.StatusCode >= 500 || resp.StatusCode == 429 {
			return models.Parcel{}, carrier.StatusError(CarrierID, resp.StatusCode)
		}
		// неверная пара трек/индекс отдаётся как 4xx
		return models.Parcel{}, carrier.NewError(carrier.KindNotFound, CarrierID, errors.Errorf("http %d", resp.StatusCode))
	}

	var body trackResponse
	if err := carrier.DecodeJSON(CarrierID, resp.Body, &body); err != nil {
		return models.Parcel{}, err
	}
	item, ok := body.Colli[trackingID]
	if !ok {
		item, ok = body.Colli[strings.ToUpper(trackingID)]
	}
	if !ok {
		return models.Parcel{}, carrier.NewError(carrier.KindNotFound, CarrierID, errors.New("no colli for tracking id"))
	}
	return c.toParcel(trackingID, item)
}

func (c *Client) toParcel(trackingID string, item colli) (models.Parcel, error) {
	observations := make([]carrier.RawEvent, 0, len(item.AnalyticsInfo.AllObservations))
	var events []carrier.RawEvent
	for _, o := range item.AnalyticsInfo.AllObservations {
		t, err := c.clock.ParseISO(o.ObservationDate)
		if err != nil {
			return models.Parcel{}, carrier.NewError(carrier.KindUnsupportedResponse, CarrierID, err)
		}
		e := carrier.RawEvent{Time: t, Status: codeToStatus(o.ObservationCode)}
		observations = append(observations, e)
		// без описания событие идёт только в расчёт статуса
		if o.Description != nil {
			e.Description = strings.TrimSpace(*o.Description)
			events = append(events, e)
		}
	}

	// текущий статус: самое свежее наблюдение с известным кодом
	current := models.StatusUnknown
	sort.SliceStable(observations, func(i, j int) bool {
		return observations[i].Time.After(observations[j].Time)
	})
	for _, o := range observations {
		if o.Status != models.StatusUnknown {
			current = o.Status
			break
		}
	}

	props := map[string]string{}
	if item.Eta != nil && item.Eta.Start != "" && item.Eta.End != "" {
		start, errStart := c.clock.ParseISO(item.Eta.Start)
		end, errEnd := c.clock.ParseISO(item.Eta.End)
		if errStart == nil && errEnd == nil {
			window := fmt.Sprintf("%s - %s", start.Format(etaLayout), end.Format(etaLayout))
			events = append(events, carrier.RawEvent{
				Description: "Package expected between " + window,
				Time:        start,
			})
			props["Expected delivery"] = window
		}
	}

	return carrier.BuildParcel(CarrierID, trackingID, events, &current, props)
}

func normalizePostalCode(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}
