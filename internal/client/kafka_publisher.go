package client

import (
	"context"
	"strings"

	"github.com/segmentio/kafka-go"

	"github.com/pesio-ai/be-procurement-settlement/internal/repository"
)

// KafkaPublisher writes outbox events to one topic, keyed by aggregate id so
// events of one order stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// ParseBrokers splits a comma-separated broker list, dropping blanks.
func ParseBrokers(brokersCSV string) []string {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

// PublishEvents writes the batch synchronously; an error means none of the
// events may be treated as delivered.
func (p *KafkaPublisher) PublishEvents(ctx context.Context, events []*repository.OutboxEvent) error {
	if len(events) == 0 {
		return nil
	}
	return p.writer.WriteMessages(ctx, toMessages(events)...)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toMessages(events []*repository.OutboxEvent) []kafka.Message {
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.Key),
			Value: e.Payload,
			Time:  e.CreatedAt.UTC(),
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(e.EventID)},
				{Key: "event_type", Value: []byte(e.EventType)},
			},
		})
	}
	return msgs
}
