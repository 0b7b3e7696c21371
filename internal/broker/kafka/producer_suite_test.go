package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type writerMock struct {
	mock.Mock
}

func (m *writerMock) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

type ProducerSuite struct {
	suite.Suite
	wm *writerMock
	p  *Producer
}

func (s *ProducerSuite) SetupTest() {
	s.wm = &writerMock{}
	s.p = newProducerWithWriter(s.wm)
}

func (s *ProducerSuite) TestNewProducer_WriterSettings() {
	p := NewProducer([]string{"localhost:0"})
	w, ok := p.w.(*kafka.Writer)
	s.Require().True(ok)
	s.Require().Equal(kafka.RequireOne, w.RequiredAcks)
	s.Require().IsType(&kafka.Hash{}, w.Balancer)
	s.Require().NoError(p.Close())
}

func (s *ProducerSuite) TestPublish_StatusChangedPayload() {
	s.wm.
		On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 {
				return false
			}
			m := msgs[0]
			return m.Topic == "parcel.status_changed" &&
				string(m.Key) == "42" &&
				string(m.Value) == `{"parcel_ref_id":42}` &&
				len(m.Headers) == 1 && string(m.Headers[0].Value) == "application/json"
		})).
		Return(nil).
		Once()

	s.Require().NoError(s.p.Publish(context.Background(), "parcel.status_changed", []byte("42"), []byte(`{"parcel_ref_id":42}`)))
	s.wm.AssertExpectations(s.T())
}

func (s *ProducerSuite) TestPublish_ErrorNamesTopic() {
	want := errors.New("leader not available")
	s.wm.On("WriteMessages", mock.Anything, mock.Anything).Return(want).Once()

	err := s.p.Publish(context.Background(), "parcel.status_changed", []byte("1"), []byte("{}"))
	s.Require().ErrorIs(err, want)
	s.Require().Contains(err.Error(), "kafka publish to parcel.status_changed")
	s.wm.AssertExpectations(s.T())
}

func (s *ProducerSuite) TestClose_WriterWithoutCloser() {
	s.Require().NoError(s.p.Close())
}

func TestProducerSuite(t *testing.T) {
	suite.Run(t, new(ProducerSuite))
}
