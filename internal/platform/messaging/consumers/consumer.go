package consumers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/blueshark0/pas/internal/config"
	"github.com/segmentio/kafka-go"
)

const fetchRetryDelay = time.Second

type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer delivers messages of one topic to a handler until ctx is done
type Consumer interface {
	Run(ctx context.Context, handler MessageHandler) error
	Close() error
}

// KafkaReader is the subset of kafka.Reader the consumer uses
type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer reads the sweep request topic as part of a consumer group.
// Offsets are committed only after the handler succeeds.
type KafkaConsumer struct {
	reader KafkaReader
	topic  string
	group  string
	logger *slog.Logger
}

func NewKafkaConsumer(logger *slog.Logger, cfg *config.KafkaConfig) *KafkaConsumer {
	startOffset := kafka.FirstOffset
	if cfg.StartOffset == kafka.LastOffset {
		startOffset = kafka.LastOffset
	}
	return &KafkaConsumer{
		logger: logger,
		topic:  cfg.SweepTopic,
		group:  cfg.ConsumerGroup,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     []string{cfg.Brokers},
			Topic:       cfg.SweepTopic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    cfg.MinBytes,
			MaxBytes:    cfg.MaxBytes,
			MaxWait:     cfg.MaxWait,
			StartOffset: startOffset,
		}),
	}
}

// Run blocks, handing every fetched message to handler. It returns nil once
// ctx is canceled.
func (c *KafkaConsumer) Run(ctx context.Context, handler MessageHandler) error {
	log := c.logger.With("topic", c.topic, "group_id", c.group)
	log.Info("Consuming Kafka topic")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				log.Info("Context canceled, stopping consumer")
				return nil
			}
			log.Error("Failed to fetch message from Kafka", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(fetchRetryDelay):
			}
			continue
		}

		msgLog := log.With("partition", msg.Partition, "offset", msg.Offset, "key", string(msg.Key))
		msgLog.Debug("Received message")

		if err := handler(ctx, msg.Key, msg.Value); err != nil {
			msgLog.Error("Failed to process message, offset not committed", "error", err)
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			msgLog.Error("Failed to commit message", "error", err)
			continue
		}
		msgLog.Debug("Message committed")
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader == nil {
		return nil
	}
	return c.reader.Close()
}
