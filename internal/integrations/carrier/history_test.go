package carrier

import (
	"testing"
	"time"

	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/stretchr/testify/require"
)

func ts(h int) time.Time { return time.Date(2025, 1, 1, h, 0, 0, 0, time.UTC) }

func TestNormalize_NewestFirstAndDedup(t *testing.T) {
	in := []RawEvent{
		{Description: "a", Time: ts(1)},
		{Description: "c", Time: ts(3)},
		{Description: "b", Time: ts(2)},
		{Description: "c", Time: ts(3)},
		{Description: "c", Time: ts(3), Location: "Paris"},
	}
	out := Normalize(in)
	require.Len(t, out, 4)
	require.Equal(t, "c", out[0].Description)
	require.Equal(t, "", out[0].Location)
	require.Equal(t, "Paris", out[1].Location)
	require.Equal(t, "b", out[2].Description)
	require.Equal(t, "a", out[3].Description)
}

func TestNormalize_TiesUseCarrierOrder(t *testing.T) {
	in := []RawEvent{
		{Description: "first", Time: ts(5), Order: 1},
		{Description: "second", Time: ts(5), Order: 2},
		{Description: "x", Time: ts(5)},
		{Description: "y", Time: ts(5)},
	}
	out := Normalize(in)
	require.Equal(t, []string{"second", "first", "x", "y"}, []string{
		out[0].Description, out[1].Description, out[2].Description, out[3].Description,
	})
}

func TestBuildParcel(t *testing.T) {
	events := []RawEvent{
		{Description: "old", Time: ts(1), Status: models.StatusPreadvice},
		{Description: "new", Time: ts(2), Status: models.StatusInTransit},
	}

	p, err := BuildParcel("x", "T1", events, nil, map[string]string{})
	require.NoError(t, err)
	require.Equal(t, "T1", p.TrackingID)
	require.Equal(t, models.StatusInTransit, p.CurrentStatus)
	require.Equal(t, "new", p.History[0].Description)
	require.Nil(t, p.Properties)

	delivered := models.StatusDelivered
	p, err = BuildParcel("x", "T1", events, &delivered, nil)
	require.NoError(t, err)
	require.Equal(t, models.StatusDelivered, p.CurrentStatus)

	// синтетические статусы адаптер вернуть не может
	synthetic := models.StatusNetworkFailure
	p, err = BuildParcel("x", "T1", events, &synthetic, nil)
	require.NoError(t, err)
	require.Equal(t, models.StatusUnknown, p.CurrentStatus)

	_, err = BuildParcel("x", "T1", nil, &delivered, nil)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestExtractLocation(t *testing.T) {
	loc, desc := ExtractBracketLocation("[Shenzhen] Departed from sorting center")
	require.Equal(t, "Shenzhen", loc)
	require.Equal(t, "Departed from sorting center", desc)

	loc, desc = ExtractBracketLocation("No location here")
	require.Equal(t, "", loc)
	require.Equal(t, "No location here", desc)

	loc, desc = ExtractParenLocation("Arrived at depot (Budapest) today")
	require.Equal(t, "Budapest", loc)
	require.Equal(t, "Arrived at depot today", desc)
}

func TestClock(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)
	c := NewClock(warsaw)

	got, err := c.ParseISO("2025-06-01T10:00:00Z")
	require.NoError(t, err)
	require.Equal(t, 12, got.Hour())
	require.Equal(t, warsaw, got.Location())

	got, err = c.ParseISO("2025-06-01T10:00:00")
	require.NoError(t, err)
	require.Equal(t, 10, got.Hour())

	got, err = c.ParseLocal("2006-01-02 15:04:05", "2025-06-01 10:00:00")
	require.NoError(t, err)
	require.True(t, got.Equal(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)))

	got = c.FromEpochMillis(0)
	require.Equal(t, warsaw, got.Location())

	_, err = c.ParseISO("yesterday")
	require.Error(t, err)
}
