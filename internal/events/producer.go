package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"moduscap-be/internal/config"
	"moduscap-be/internal/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes order events to Kafka, keyed by order number so that
// events of one order stay on one partition.
type Producer struct {
	writer messageWriter
}

func NewProducer(cfg config.KafkaConfig) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrderTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    10,
		BatchTimeout: 100 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.L().Warn("kafka producer error", zap.Int("messages", len(messages)), zap.Error(err))
			}
		},
	}
	return &Producer{writer: writer}
}

func (p *Producer) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.OrderNumber),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops events. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, e Event) error {
	logger.FromCtx(ctx).Debug("event dropped, no broker configured",
		zap.String("type", e.Type),
		zap.String("order_number", e.OrderNumber),
	)
	return nil
}

func (NoopPublisher) Close() error { return nil }
