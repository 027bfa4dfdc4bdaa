package kafka

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/Richard-mb9/pedidos-service/pkg/kafka"
)

// Publisher writes one message per domain event to a single topic. The
// message key is the order id from the envelope payload, so all events
// of one order stay ordered on one partition.
type Publisher struct {
	writer *kafkago.Writer
}

// NewPublisher builds a publisher for the given topic, or ErrDisabled
// when the client has no brokers.
func NewPublisher(client *kafka.Client, topic string) (*Publisher, error) {
	if !client.Enabled() {
		return nil, kafka.ErrDisabled
	}
	return &Publisher{writer: client.NewWriter(topic)}, nil
}

func (p *Publisher) Publish(ctx context.Context, eventName string, envelope map[string]any) error {
	key := eventName
	if payload, ok := envelope["payload"].(map[string]any); ok {
		if orderID, ok := payload["order_id"].(string); ok && orderID != "" {
			key = orderID
		}
	}
	return kafka.PublishJSON(ctx, p.writer, key, envelope)
}

// Close flushes and releases the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
