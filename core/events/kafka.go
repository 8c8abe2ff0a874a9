// Package events publishes entity change notifications to kafka.
package events

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/relabs-tech/kumande/core"
)

// Topic is the kafka topic all change notifications go to.
const Topic = "kumande.events"

// KafkaNotifier implements core.Notifier on a kafka topic. Messages are
// keyed by resource, so notifications for the same resource stay
// ordered within their partition.
type KafkaNotifier struct {
	writer *kafka.Writer
}

// NewKafkaNotifier creates a notifier publishing to the given brokers.
func NewKafkaNotifier(brokers []string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  Topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
	}
}

// Notify publishes one change notification.
func (n *KafkaNotifier) Notify(resource string, operation core.Operation, payload []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(resource),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "operation", Value: []byte(operation)},
		},
	})
}

// Close flushes pending messages and closes the underlying writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
