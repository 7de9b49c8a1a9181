// Package publisher ships audit events to Kafka. The broker fan-out lets
// compliance consumers build their own views without touching the engine.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "agora/pkg/platform/audit"
)

// Kafka publishes audit events as JSON records keyed by principal so all
// events for one citizen land in the same partition, in order.
type Kafka struct {
	client *kgo.Client
	topic  string
}

// NewKafka connects to the given seed brokers. Returns nil when no brokers
// are configured so callers can wire it optionally.
func NewKafka(brokers []string, topic string) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Kafka{client: client, topic: topic}, nil
}

// payload matches the JSON structure consumers deserialize.
type payload struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	Principal string `json:"principal"`
	Subject   string `json:"subject,omitempty"`
	Amount    uint64 `json:"amount,omitempty"`
	Block     uint64 `json:"block"`
	At        string `json:"at"`
	RequestID string `json:"request_id,omitempty"`
}

func (k *Kafka) Publish(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(payload{
		ID:        event.ID.String(),
		Action:    string(event.Action),
		Principal: string(event.Principal),
		Subject:   event.Subject,
		Amount:    event.Amount,
		Block:     uint64(event.Block),
		At:        event.At.Format(time.RFC3339Nano),
		RequestID: event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(event.Principal),
		Value: value,
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (k *Kafka) Close() {
	k.client.Close()
}
