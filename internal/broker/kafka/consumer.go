package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/BearBump/ParcelBox/internal/broker/messages"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	r messageReader
}

// NewConsumer: без groupID читает одну партицию топика без коммитов в группу.
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	cfg := kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
		MaxWait:           500 * time.Millisecond,
	}
	if groupID != "" {
		cfg.GroupTopics = []string{topic}
	} else {
		cfg.Topic = topic
	}
	return &Consumer{
		r: kafka.NewReader(cfg),
	}
}

func newConsumerWithReader(r messageReader) *Consumer {
	return &Consumer{r: r}
}

func (c *Consumer) Close() error {
	return c.r.Close()
}

// Consume commits a message only after handler succeeds; a handler error stops consumption.
func (c *Consumer) Consume(ctx context.Context, handler func(key, value []byte) error) error {
	for {
		msg, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errors.Wrap(err, "fetch message")
		}
		if err := handler(msg.Key, msg.Value); err != nil {
			return err
		}
		if err := c.r.CommitMessages(ctx, msg); err != nil {
			return errors.Wrap(err, "commit message")
		}
	}
}

// ConsumeStatusChanges decodes ParcelStatusChanged events.
// Битые сообщения и события без ключа посылки коммитятся и пропускаются, иначе партиция встанет.
func (c *Consumer) ConsumeStatusChanges(ctx context.Context, handler func(ctx context.Context, m messages.ParcelStatusChanged) error) error {
	return c.Consume(ctx, func(_key, value []byte) error {
		var m messages.ParcelStatusChanged
		if err := json.Unmarshal(value, &m); err != nil {
			slog.Warn("skip malformed status change", "err", err)
			return nil
		}
		if m.CarrierID == "" || m.TrackingID == "" {
			slog.Warn("skip status change without parcel key", "event_id", m.EventID)
			return nil
		}
		return handler(ctx, m)
	})
}
