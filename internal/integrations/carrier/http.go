package carrier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultLanguage    = "en"
	defaultHTTPTimeout = 15 * time.Second
	maxBodyBytes       = 8 << 20
	userAgent          = "ParcelBox/1.0 (+https://github.com/BearBump/ParcelBox)"
)

// NewHTTPClient builds the transport shared read-only by all adapters.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// Response is a fully read HTTP response; the body is already closed.
type Response struct {
	StatusCode int
	Body       []byte
}

func (r Response) OK() bool { return r.StatusCode/100 == 2 }

// NewRequest creates a GET request with the common headers set.
func NewRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

// Do executes req and reads the whole body. Transport failures come back as NetworkFailure.
func Do(c *http.Client, carrierID string, req *http.Request) (Response, error) {
	resp, err := c.Do(req)
	if err != nil {
		return Response{}, NewError(KindNetworkFailure, carrierID, errors.Wrap(err, "do request"))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	// дочитываем остаток, чтобы соединение вернулось в пул
	_, _ = io.Copy(io.Discard, resp.Body)
	if err != nil {
		return Response{}, NewError(KindNetworkFailure, carrierID, errors.Wrap(err, "read body"))
	}
	return Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// DecodeJSON decodes body into v; any failure is an UnsupportedResponse.
func DecodeJSON(carrierID string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		if !isDecodeError(err) {
			err = errors.Wrap(err, "unexpected decode failure")
		}
		return NewError(KindUnsupportedResponse, carrierID, errors.Wrap(err, "decode"))
	}
	return nil
}

// StatusError classifies a non-2xx response that the adapter did not handle itself.
func StatusError(carrierID string, code int) error {
	switch {
	case code == http.StatusNotFound || code == http.StatusGone:
		return NewError(KindNotFound, carrierID, fmt.Errorf("http %d", code))
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return NewError(KindAPIKeyMissing, carrierID, fmt.Errorf("http %d", code))
	case code == http.StatusTooManyRequests || code >= 500:
		return NewError(KindNetworkFailure, carrierID, fmt.Errorf("http %d", code))
	default:
		return NewError(KindUnsupportedResponse, carrierID, fmt.Errorf("http %d", code))
	}
}
