package expressone

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BearBump/ParcelBox/internal/integrations/carrier"
	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/stretchr/testify/require"
)

const okPage = `<html><body>
<div class="tracking">
  <h5><span>2025-01-02</span></h5>
  <table>
    <tr><th>Idő</th><th>Kód</th><th>Esemény</th></tr>
    <tr><td>08:00:00</td><td>01</td><td>Csomag feldolgozás (Budapest)</td></tr>
    <tr><td>16:00:00</td><td>05</td><td>Kiszállítás&nbsp;alatt (Győr)</td></tr>
    <tr><td>nem idő</td><td>99</td><td>hibás sor</td></tr>
  </table>
  <h5><span>2025-01-03</span></h5>
  <table>
    <tr><td>10:15:00</td><td>07</td><td>Kézbesítve (Győr)</td></tr>
  </table>
</div>
</body></html>`

func newServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "ABC12345678", r.URL.Query().Get("plc_number"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GetParcel_ParsesDayTables(t *testing.T) {
	srv := newServer(t, okPage)
	c := New(carrier.Options{BaseURL: srv.URL, Zone: time.UTC})

	p, err := c.GetParcel(context.Background(), "ABC12345678", "")
	require.NoError(t, err)
	require.Equal(t, "ABC12345678", p.TrackingID)
	require.Equal(t, models.StatusDelivered, p.CurrentStatus)
	require.Len(t, p.History, 3)

	require.Equal(t, "Kézbesítve", p.History[0].Description)
	require.Equal(t, "Győr", p.History[0].Location)
	require.Equal(t, time.Date(2025, 1, 3, 10, 15, 0, 0, time.UTC), p.History[0].Time)

	require.Equal(t, "Kiszállítás alatt", p.History[1].Description)
	require.Equal(t, "Csomag feldolgozás", p.History[2].Description)
	require.Equal(t, "Budapest", p.History[2].Location)
}

func TestClient_GetParcel_NoResultsPage(t *testing.T) {
	page := `<html><body><p>Nincs találat a megadott azonosítóra.</p>
<h5><span>2025-01-02</span></h5><table><tr><td>08:00:00</td><td>01</td><td>Csomag feldolgozás</td></tr></table>
</body></html>`
	srv := newServer(t, page)
	c := New(carrier.Options{BaseURL: srv.URL, Zone: time.UTC})

	_, err := c.GetParcel(context.Background(), "ABC12345678", "")
	require.ErrorIs(t, err, carrier.ErrNotFound)
}

func TestClient_GetParcel_EmptyPageIsNotFound(t *testing.T) {
	srv := newServer(t, `<html><body><div class="tracking"></div></body></html>`)
	c := New(carrier.Options{BaseURL: srv.URL, Zone: time.UTC})

	_, err := c.GetParcel(context.Background(), "ABC12345678", "")
	require.ErrorIs(t, err, carrier.ErrNotFound)
}

func TestClient_GetParcel_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	c := New(carrier.Options{BaseURL: srv.URL, Zone: time.UTC})

	_, err := c.GetParcel(context.Background(), "ABC12345678", "")
	require.ErrorIs(t, err, carrier.ErrNetworkFailure)
}

func TestTextToStatus(t *testing.T) {
	cases := map[string]models.Status{
		"Kézbesítve":                 models.StatusDelivered,
		"Out for delivery":           models.StatusOutForDelivery,
		"Depóba érkezett":            models.StatusInWarehouse,
		"Átvételre vár":              models.StatusAwaitingPickup,
		"valami teljesen ismeretlen": models.StatusInTransit,
	}
	for text, want := range cases {
		require.Equal(t, want, textToStatus(text), text)
	}
}

func TestClient_AcceptsFormat(t *testing.T) {
	c := New(carrier.Options{})
	require.True(t, c.AcceptsFormat("ABC12345678"))
	require.False(t, c.AcceptsFormat("abc-123"))
	require.False(t, c.AcceptsFormat(""))
}
