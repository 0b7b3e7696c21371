package expressone

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

const (
	CarrierID      = "expressone"
	defaultBaseURL = "https://tracking.expressone.hu/"
)

var (
	format      = regexp.MustCompile(`^[A-Za-z0-9]{8,20}$`)
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
)

// Фразы, по которым страница считается "ничего не найдено". Проверяются до разбора полей.
var notFoundPhrases = []string{
	"Nincs találat",
	"No results",
	"A keresett csomag nem található",
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
	return models.CarrierDescriptor{ID: CarrierID, Name: "Express One"}
}

func (c *Client) AcceptsFormat(trackingID string) bool {
	return format.MatchString(trackingID)
}

func (c *Client) GetParcel(ctx context.Context, trackingID, _ string) (models.Parcel, error) {
	u, err := url.Parse(c.opts.BaseURL)
	if err != nil {
		return models.Parcel{}, errors.Wrap(err, "parse base url")
	}
	q := u.Query()
	q.Set("plc_number", trackingID)
	q.Set("sender_id", "")
	u.RawQuery = q.Encode()

	req, err := carrier.NewRequest(ctx, u.String())
	if err != nil {
		return models.Parcel{}, err
	}
	req.Header.Set("Accept", "text/html")
	resp, err := carrier.Do(c.opts.HTTPClient, CarrierID, req)
	if err != nil {
		return models.Parcel{}, err
	}
	if !resp.OK() {
		if resp.StatusCode >= 500 || resp.StatusCode == 429 {
			return models.Parcel{}, carrier.StatusError(CarrierID, resp.StatusCode)
		}
		return models.Parcel{}, carrier.NewError(carrier.KindNotFound, CarrierID, errors.Errorf("http %d", resp.StatusCode))
	}
	return c.parse(trackingID, resp.Body)
}

func (c *Client) parse(trackingID string, html []byte) (models.Parcel, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return models.Parcel{}, carrier.NewError(carrier.KindUnsupportedResponse, CarrierID, errors.Wrap(err, "parse html"))
	}
	if pageSaysNotFound(doc) {
		return models.Parcel{}, carrier.NewError(carrier.KindNotFound, CarrierID, errors.New("page reports no results"))
	}

	var events []carrier.RawEvent
	doc.Find("h5").Each(func(_ int, h *goquery.Selection) {
		day := cleanText(h.Find("span").First().Text())
		if !datePattern.MatchString(day) {
			return
		}
		h.NextUntil("h5").Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() < 3 {
				return
			}
			clock := cleanText(cells.Eq(0).Text())
			code := cleanText(cells.Eq(1).Text())
			text := cleanText(cells.Eq(2).Text())
			if !timePattern.MatchString(clock) || text == "" {
				return
			}
			t, err := c.clock.ParseLocal("2006-01-02 15:04:05", day+" "+clock)
			if err != nil {
				return
			}
			location, desc := carrier.ExtractParenLocation(text)
			events = append(events, carrier.RawEvent{
				Description: desc,
				Time:        t,
				Location:    location,
				Status:      textToStatus(code + " " + desc),
			})
		})
	})

	return carrier.BuildParcel(CarrierID, trackingID, events, nil, nil)
}

func pageSaysNotFound(doc *goquery.Document) bool {
	return carrier.ContainsAny(doc.Find("body").Text(), notFoundPhrases...)
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}
