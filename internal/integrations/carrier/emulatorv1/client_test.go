package emulatorv1

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

type keys map[string]string

func (k keys) APIKey(id string) (string, bool) {
	v, ok := k[id]
	return v, ok
}

func TestClient_GetParcel_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/tracking/CDEK/123", r.URL.Path)
		require.Equal(t, "k", r.URL.Query().Get("apiKey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "carrier": "CDEK",
  "track_number": "123",
  "status": "OUT_FOR_DELIVERY",
  "status_raw": "raw",
  "status_at": "2025-01-02T00:00:00Z",
  "events": [
    {"status":"IN_TRANSIT","status_raw":"in transit","event_time":"2025-01-01T00:00:00Z","location":"Moscow"},
    {"status":"DELIVERED","status_raw":"raw","event_time":"2025-01-02T00:00:00Z","message":"courier took it"}
  ]
}`))
	}))
	defer srv.Close()

	c := New(carrier.Options{BaseURL: srv.URL, Zone: time.UTC, Credentials: keys{CarrierID: "k"}}, "CDEK")
	p, err := c.GetParcel(context.Background(), "123", "")
	require.NoError(t, err)
	// статус верхнего уровня главнее последнего события
	require.Equal(t, models.StatusOutForDelivery, p.CurrentStatus)
	require.Len(t, p.History, 2)
	require.Equal(t, "courier took it", p.History[0].Description)
	require.Equal(t, "Moscow", p.History[1].Location)
	require.Equal(t, "CDEK", p.Properties["Upstream carrier"])
}

func TestClient_GetParcel_UnknownStatusName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"TELEPORTED","events":[{"status":"TELEPORTED","status_raw":"x","event_time":"2025-01-01T00:00:00Z"}]}`))
	}))
	defer srv.Close()

	c := New(carrier.Options{BaseURL: srv.URL, Zone: time.UTC}, "CDEK")
	p, err := c.GetParcel(context.Background(), "123", "")
	require.NoError(t, err)
	require.Equal(t, models.StatusUnknown, p.CurrentStatus)
}

func TestClient_GetParcel_429(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(carrier.Options{BaseURL: srv.URL, Zone: time.UTC}, "CDEK")
	_, err := c.GetParcel(context.Background(), "123", "")
	require.ErrorIs(t, err, carrier.ErrNetworkFailure)
}

func TestClient_GetParcel_NoEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"IN_TRANSIT","events":[]}`))
	}))
	defer srv.Close()

	c := New(carrier.Options{BaseURL: srv.URL, Zone: time.UTC}, "CDEK")
	_, err := c.GetParcel(context.Background(), "123", "")
	require.ErrorIs(t, err, carrier.ErrNotFound)
}
