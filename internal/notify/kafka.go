package notify

import (
	"context"
	"encoding/json"
	"fmt"

	kafka "github.com/segmentio/kafka-go"
)

// OutboxTopic is where handoff notices are published for the downstream
// SMS/email sender to pick up.
const OutboxTopic = "handoff-otp-outbox"

// KafkaPublisher writes handoff notices to the outbox topic, keyed by
// donation id so retries for one donation stay ordered on a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        OutboxTopic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *KafkaPublisher) NotifyHandoffCode(ctx context.Context, notice HandoffNotice) error {
	payload, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("notify: marshal notice: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(notice.DonationID.String()),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("notify: publish to %s: %w", OutboxTopic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
