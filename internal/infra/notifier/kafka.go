package notifier

import (
	"context"
	"time"

	"flynext/internal/pkg/config"
	"flynext/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
)

// Publisher pushes drained notification jobs onto the broker. Delivery to
// actual channels (email, in-app) is downstream consumers' business.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(cfg config.KafkaConfig) (*Publisher, func()) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.NotificationTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	cleanup := func() {
		_ = writer.Close()
	}
	return &Publisher{writer: writer}, cleanup
}

func (p *Publisher) Publish(ctx context.Context, key string, payload []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		return errs.Wrap(err, "publish notification")
	}
	return nil
}
