package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-augment/internal/config"
	"github.com/couchcryptid/weather-augment/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces run events to a Kafka topic.
// It implements pipeline.EventPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured run topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish writes one run event. Events of the same dataset share a key and
// therefore a partition, so consumers see phases in order.
func (p *Publisher) Publish(ctx context.Context, event domain.RunEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish run event: %w", err)
	}
	p.logger.Debug("run event published", "dataset", event.Dataset, "phase", event.Phase)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a RunEvent into a Kafka message.
func serializeToMessage(event domain.RunEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize run event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.Dataset),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "phase", Value: []byte(event.Phase)},
			{Key: "finished_at", Value: []byte(event.FinishedAt.Format(time.RFC3339))},
		},
	}, nil
}
