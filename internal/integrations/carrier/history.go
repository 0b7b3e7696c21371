package carrier

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/pkg/errors"
)

// RawEvent is one carrier event before normalization.
type RawEvent struct {
	Description string
	Time        time.Time
	Location    string
	Status      models.Status
	// Order is the carrier-supplied rank (bigger is newer); zero when the carrier has none.
	Order int
}

// Clock converts carrier timestamps into the reference zone at parse time.
type Clock struct {
	zone *time.Location
}

func NewClock(zone *time.Location) Clock {
	if zone == nil {
		zone = time.Local
	}
	return Clock{zone: zone}
}

func (c Clock) Zone() *time.Location { return c.zone }

func (c Clock) FromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).In(c.zone)
}

// ParseLocal parses a timestamp that carries no offset; it is read in the reference zone.
func (c Clock) ParseLocal(layout, value string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, strings.TrimSpace(value), c.zone)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse time %q", value)
	}
	return t, nil
}

var isoLayoutsNoZone = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseISO accepts ISO-8601 date-times with or without an offset.
func (c Clock) ParseISO(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.In(c.zone), nil
	}
	for _, layout := range isoLayoutsNoZone {
		if t, err := time.ParseInLocation(layout, v, c.zone); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("parse iso time %q", value)
}

var (
	bracketLocation = regexp.MustCompile(`^\s*\[([^\]]*)\]\s*(.*)$`)
	parenLocation   = regexp.MustCompile(`\(([^)]+)\)`)
)

// ExtractBracketLocation splits "[City] rest of text".
func ExtractBracketLocation(s string) (location, description string) {
	m := bracketLocation.FindStringSubmatch(s)
	if m == nil {
		return "", strings.TrimSpace(s)
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}

// ExtractParenLocation takes the first "(City)" token out of the text.
func ExtractParenLocation(s string) (location, description string) {
	loc := parenLocation.FindStringSubmatchIndex(s)
	if loc == nil {
		return "", strings.TrimSpace(s)
	}
	location = strings.TrimSpace(s[loc[2]:loc[3]])
	description = s[:loc[0]] + s[loc[1]:]
	return location, strings.Join(strings.Fields(description), " ")
}

// Normalize sorts newest first and drops exact duplicates.
// Equal timestamps are ordered by the carrier rank, then keep carrier order.
func Normalize(events []RawEvent) []RawEvent {
	out := make([]RawEvent, 0, len(events))
	type key struct {
		t    int64
		desc string
		loc  string
	}
	seen := make(map[key]struct{}, len(events))
	for _, e := range events {
		k := key{t: e.Time.UnixNano(), desc: e.Description, loc: e.Location}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Time.Equal(out[j].Time) {
			return out[i].Time.After(out[j].Time)
		}
		return out[i].Order > out[j].Order
	})
	return out
}

// BuildParcel normalizes events into a canonical parcel.
// authoritative, when set, wins over the status of the newest event.
// An empty event list is a NotFound.
func BuildParcel(carrierID, trackingID string, events []RawEvent, authoritative *models.Status, props map[string]string) (models.Parcel, error) {
	norm := Normalize(events)
	if len(norm) == 0 {
		return models.Parcel{}, NewError(KindNotFound, carrierID, errors.New("no events"))
	}

	status := norm[0].Status
	if authoritative != nil {
		status = *authoritative
	}
	if !status.Valid() || status.Synthetic() {
		status = models.StatusUnknown
	}

	history := make([]models.HistoryEvent, 0, len(norm))
	for _, e := range norm {
		history = append(history, models.HistoryEvent{
			Description: e.Description,
			Time:        e.Time,
			Location:    e.Location,
		})
	}
	if len(props) == 0 {
		props = nil
	}
	return models.Parcel{
		TrackingID:    trackingID,
		CurrentStatus: status,
		History:       history,
		Properties:    props,
	}, nil
}
