package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/blueshark0/pas/internal/config"
	"github.com/segmentio/kafka-go"
)

// SweepRequestProducer publishes sweep requests for the scheduler binary
type SweepRequestProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewSweepRequestProducer dials the brokers, makes sure the sweep topic
// exists and returns a synchronous producer for it.
func NewSweepRequestProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*SweepRequestProducer, error) {
	if cfg.SweepTopic == "" {
		return nil, fmt.Errorf("kafka sweep topic is not configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for sweep request producer: %w", err)
	}
	defer conn.Close()

	if err := ensureTopic(conn, cfg.SweepTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure sweep topic %s exists: %w", cfg.SweepTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.SweepTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.MaxWait,
	}

	return &SweepRequestProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.SweepTopic,
	}, nil
}

func (p *SweepRequestProducer) Publish(ctx context.Context, key string, value any) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal sweep request: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish sweep request", "topic", p.topic, "key", key, "error", err)
		return fmt.Errorf("failed to publish sweep request to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published sweep request", "topic", p.topic, "key", key)
	return nil
}

func (p *SweepRequestProducer) Close() error {
	p.logger.Info("Closing sweep request producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
