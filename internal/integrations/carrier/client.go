package carrier

import (
	"context"
	"net/http"
	"time"

	"github.com/BearBump/ParcelBox/internal/models"
)

// Adapter — реализация одного перевозчика: сеть, парсинг ответа и маппинг статусов.
// Реализации не хранят состояния между вызовами.
type Adapter interface {
	Descriptor() models.CarrierDescriptor
	// AcceptsFormat is a pure shape check used for input assist only.
	AcceptsFormat(trackingID string) bool
	GetParcel(ctx context.Context, trackingID, postalCode string) (models.Parcel, error)
}

// Credentials is the read-only credential store adapters consult before calling out.
type Credentials interface {
	APIKey(carrierID string) (string, bool)
}

// Options are shared by every adapter constructor.
type Options struct {
	HTTPClient  *http.Client
	Credentials Credentials
	Zone        *time.Location
	Language    string
	// BaseURL overrides the carrier endpoint (tests, emulators).
	BaseURL string
}

func (o Options) WithDefaults(defaultBaseURL string) Options {
	if o.HTTPClient == nil {
		o.HTTPClient = NewHTTPClient(0)
	}
	if o.Zone == nil {
		o.Zone = time.Local
	}
	if o.Language == "" {
		o.Language = DefaultLanguage
	}
	if o.BaseURL == "" {
		o.BaseURL = defaultBaseURL
	}
	return o
}

// RequireAPIKey returns the configured key or an ApiKeyMissing error.
func RequireAPIKey(creds Credentials, carrierID string) (string, error) {
	if creds == nil {
		return "", NewError(KindAPIKeyMissing, carrierID, nil)
	}
	key, ok := creds.APIKey(carrierID)
	if !ok || key == "" {
		return "", NewError(KindAPIKeyMissing, carrierID, nil)
	}
	return key, nil
}
