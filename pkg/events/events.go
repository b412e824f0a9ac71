package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"creatorplane/pkg/config"
)

var Module = fx.Module("events", fx.Provide(NewPublisher))

// Event is the envelope written to the broker for every domain event.
type Event struct {
	Type       string          `json:"type"`
	TenantID   string          `json:"tenant_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType, tenantID string, payload any) error
}

type kafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, eventType, tenantID string, payload any) error {
	return nil
}

func NewPublisher(lc fx.Lifecycle, cfg *config.Config) (Publisher, error) {
	if cfg.Kafka.Addrs == "" {
		zap.L().Warn("[Kafka] No brokers configured, events will not be published")
		return noopPublisher{}, nil
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.Kafka.Addrs,
	})
	if err != nil {
		zap.L().Error("[Kafka] Failed to create producer", zap.Error(err))
		return nil, err
	}

	zap.L().Info("[Kafka] Producer connected", zap.String("brokers", cfg.Kafka.Addrs))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			producer.Flush(5000)
			producer.Close()
			return nil
		},
	})

	return &kafkaPublisher{producer: producer, topic: cfg.Kafka.Topic}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType, tenantID string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	body, err := json.Marshal(Event{
		Type:       eventType,
		TenantID:   tenantID,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	})
	if err != nil {
		return err
	}

	return p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(tenantID),
		Value:          body,
	}, nil)
}
