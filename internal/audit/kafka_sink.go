package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"cradle/internal/platform/kafka"
)

// DefaultTopic carries serialized audit entries for downstream consumers.
const DefaultTopic = "cradle.audit"

// KafkaSink publishes audit entries to a Kafka topic, keyed by tenant so
// a tenant's entries stay ordered within a partition.
type KafkaSink struct {
	producer *kafka.Producer
	topic    string
}

var _ Sink = (*KafkaSink)(nil)

// NewKafkaSink wraps a producer as an audit sink. An empty topic selects
// DefaultTopic.
func NewKafkaSink(producer *kafka.Producer, topic string) *KafkaSink {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaSink{producer: producer, topic: topic}
}

// Publish serializes the entry and hands it to the producer's async path.
func (s *KafkaSink) Publish(_ context.Context, entry Entry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	return s.producer.ProduceAsync(&kafka.Message{
		Topic: s.topic,
		Key:   []byte(entry.TenantID.String()),
		Value: value,
		Headers: map[string]string{
			"action": entry.Action,
		},
	})
}
