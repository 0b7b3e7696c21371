package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/BearBump/ParcelBox/internal/broker/messages"
	"github.com/BearBump/ParcelBox/internal/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	msgs      []kafka.Message
	err       error
	i         int
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if r.i < len(r.msgs) {
		m := r.msgs[r.i]
		r.i++
		return m, nil
	}
	if r.err != nil {
		return kafka.Message{}, r.err
	}
	return kafka.Message{}, errors.New("eof")
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func statusChangedValue(t *testing.T, ref models.ParcelRef) []byte {
	t.Helper()
	b, err := json.Marshal(messages.NewParcelStatusChanged(ref, models.StatusInTransit, models.StatusDelivered, time.Now(), time.Now()))
	require.NoError(t, err)
	return b
}

func TestConsumer_Consume_CommitsAfterHandler(t *testing.T) {
	fr := &fakeReader{
		msgs: []kafka.Message{{Key: []byte("7"), Value: []byte("v")}},
		err:  errors.New("stop"),
	}
	c := newConsumerWithReader(fr)

	var gotK, gotV []byte
	err := c.Consume(context.Background(), func(k, v []byte) error {
		gotK, gotV = k, v
		return nil
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "fetch message")
	require.Equal(t, []byte("7"), gotK)
	require.Equal(t, []byte("v"), gotV)
	require.Len(t, fr.committed, 1)
}

func TestConsumer_Consume_HandlerErrorStops(t *testing.T) {
	fr := &fakeReader{msgs: []kafka.Message{{Key: []byte("k"), Value: []byte("v")}}}
	c := newConsumerWithReader(fr)

	want := errors.New("redis down")
	err := c.Consume(context.Background(), func(k, v []byte) error { return want })
	require.ErrorIs(t, err, want)
	// offset не коммитится, сообщение придёт снова
	require.Empty(t, fr.committed)
}

func TestConsumer_Consume_CanceledContext(t *testing.T) {
	fr := &fakeReader{err: context.Canceled}
	c := newConsumerWithReader(fr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Consume(ctx, func(k, v []byte) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

func TestConsumer_ConsumeStatusChanges_SkipsBadMessages(t *testing.T) {
	ref := models.ParcelRef{ID: 3, CarrierID: "postnl", TrackingID: "3STEST", PostalCode: ptr("1234AB")}
	fr := &fakeReader{
		msgs: []kafka.Message{
			{Value: []byte("{not json")},
			{Value: []byte(`{"parcel_ref_id":1}`)},
			{Key: []byte("3"), Value: statusChangedValue(t, ref)},
		},
		err: errors.New("stop"),
	}
	c := newConsumerWithReader(fr)

	var got []messages.ParcelStatusChanged
	err := c.ConsumeStatusChanges(context.Background(), func(ctx context.Context, m messages.ParcelStatusChanged) error {
		got = append(got, m)
		return nil
	})
	require.Error(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "postnl", got[0].CarrierID)
	require.Equal(t, "1234AB", got[0].PostalCode)
	require.Equal(t, models.StatusDelivered, got[0].NewStatus)
	// битые тоже закоммичены
	require.Len(t, fr.committed, 3)
}

func TestNewConsumer_Close(t *testing.T) {
	c := NewConsumer([]string{"localhost:0"}, "t", "g")
	require.NotNil(t, c)
	require.NoError(t, c.Close())
}

func ptr(s string) *string { return &s }
