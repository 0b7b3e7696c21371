package carrier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/url"
	"syscall"

	"github.com/pkg/errors"
)

type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindUnsupportedResponse
	KindAPIKeyMissing
	KindNetworkFailure
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnsupportedResponse:
		return "unsupported_response"
	case KindAPIKeyMissing:
		return "api_key_missing"
	case KindNetworkFailure:
		return "network_failure"
	case KindValidation:
		return "validation_error"
	default:
		return "unknown"
	}
}

// Error — единственный тип ошибки, который пересекает границу адаптера.
type Error struct {
	Kind    ErrorKind
	Carrier string
	Err     error
}

var (
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrUnsupportedResponse = &Error{Kind: KindUnsupportedResponse}
	ErrAPIKeyMissing       = &Error{Kind: KindAPIKeyMissing}
	ErrNetworkFailure      = &Error{Kind: KindNetworkFailure}
	ErrValidation          = &Error{Kind: KindValidation}
)

func NewError(kind ErrorKind, carrierID string, err error) *Error {
	return &Error{Kind: kind, Carrier: carrierID, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Carrier != "" {
		msg = fmt.Sprintf("%s: %s", e.Carrier, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches by kind, so errors.Is(err, ErrNotFound) works for any carrier.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of a classified adapter error.
func KindOf(err error) (ErrorKind, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}

// Classify converts an arbitrary failure into a typed *Error.
func Classify(carrierID string, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		if ce.Carrier == "" {
			return &Error{Kind: ce.Kind, Carrier: carrierID, Err: ce.Err}
		}
		return ce
	}
	if isTransportError(err) {
		return NewError(KindNetworkFailure, carrierID, err)
	}
	return NewError(KindUnsupportedResponse, carrierID, err)
}

func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isDecodeError(err error) bool {
	var syn *json.SyntaxError
	var typ *json.UnmarshalTypeError
	return errors.As(err, &syn) || errors.As(err, &typ) || errors.Is(err, io.EOF)
}
