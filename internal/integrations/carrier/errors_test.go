package carrier

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	require.NoError(t, Classify("x", nil))

	err := Classify("x", errors.Wrap(context.DeadlineExceeded, "do request"))
	require.ErrorIs(t, err, ErrNetworkFailure)

	err = Classify("x", io.ErrUnexpectedEOF)
	require.ErrorIs(t, err, ErrNetworkFailure)

	err = Classify("x", errors.New("index out of range"))
	require.ErrorIs(t, err, ErrUnsupportedResponse)

	// уже типизированная ошибка сохраняет вид, перевозчик дописывается
	err = Classify("x", errors.Wrap(&Error{Kind: KindNotFound}, "ctx"))
	require.ErrorIs(t, err, ErrNotFound)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindNotFound, kind)
	var ce *Error
	require.True(t, errors.As(err, &ce))
	require.Equal(t, "x", ce.Carrier)
}

func TestStatusError(t *testing.T) {
	cases := map[int]*Error{
		http.StatusNotFound:            ErrNotFound,
		http.StatusGone:                ErrNotFound,
		http.StatusUnauthorized:        ErrAPIKeyMissing,
		http.StatusForbidden:           ErrAPIKeyMissing,
		http.StatusTooManyRequests:     ErrNetworkFailure,
		http.StatusServiceUnavailable:  ErrNetworkFailure,
		http.StatusBadRequest:          ErrUnsupportedResponse,
		http.StatusUnprocessableEntity: ErrUnsupportedResponse,
	}
	for code, want := range cases {
		require.ErrorIs(t, StatusError("x", code), want, code)
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	require.NoError(t, DecodeJSON("x", []byte(`{"a":1}`), &v))
	require.Equal(t, 1, v.A)
	require.ErrorIs(t, DecodeJSON("x", []byte(`<html>`), &v), ErrUnsupportedResponse)
	require.ErrorIs(t, DecodeJSON("x", []byte(`{"a":"str"}`), &v), ErrUnsupportedResponse)
}

func TestError_Message(t *testing.T) {
	err := NewError(KindAPIKeyMissing, "usps", nil)
	require.Equal(t, "usps: api_key_missing", err.Error())
	_, ok := KindOf(errors.New("plain"))
	require.False(t, ok)
}
