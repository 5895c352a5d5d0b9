package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/blueshark0/pas/internal/domain/shared"
	"github.com/blueshark0/pas/internal/ledger_engine/service"
	"github.com/blueshark0/pas/internal/logger"
	"github.com/blueshark0/pas/internal/platform/messaging/producers"
)

// SweepRequestHandler runs ExecuteDue for sweep requests read from Kafka
type SweepRequestHandler struct {
	executor service.Executor
	producer producers.DeadLetterPublisher
	location *time.Location
	logger   *slog.Logger
}

func NewSweepRequestHandler(
	logger *slog.Logger,
	executor service.Executor,
	producer producers.DeadLetterPublisher,
	location *time.Location,
) *SweepRequestHandler {
	if location == nil {
		location = time.UTC
	}
	return &SweepRequestHandler{
		executor: executor,
		producer: producer,
		location: location,
		logger:   logger,
	}
}

// HandleMessage returns nil when the message may be committed. Malformed
// requests are parked in the DLQ; storage outages are returned so the
// message is redelivered.
func (h *SweepRequestHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var request shared.SweepRequest
	if err := json.Unmarshal(value, &request); err != nil {
		return h.deadLetter(ctx, key, value, fmt.Errorf("malformed sweep request: %w", err))
	}

	asOf := time.Now().In(h.location)
	if request.AsOfDate != "" {
		parsed, err := shared.ParseDate("as_of_date", request.AsOfDate)
		if err != nil {
			return h.deadLetter(ctx, key, value, err)
		}
		asOf = parsed
	}

	if request.CorrelationID != "" {
		ctx = logger.WithCorrelationID(ctx, request.CorrelationID)
	}
	log := logger.FromContext(ctx, h.logger).With("request_id", request.RequestID.String())
	log.Info("Received sweep request", "as_of", asOf.Format(shared.DateLayout))

	result, err := h.executor.ExecuteDue(ctx, asOf)
	if err != nil {
		log.Error("Sweep request failed", "error", err)
		return fmt.Errorf("sweep request %s failed: %w", request.RequestID, err)
	}

	if partial := result.Err(); partial != nil {
		log.Warn("Sweep request finished with failures", "executed", len(result.Executed), "error", partial)
		return nil
	}
	log.Info("Sweep request finished", "executed", len(result.Executed), "skipped", len(result.Skipped))
	return nil
}

func (h *SweepRequestHandler) deadLetter(ctx context.Context, key, value []byte, cause error) error {
	h.logger.Error("Unprocessable sweep request", "message_key", string(key), "error", cause)

	if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, cause.Error()); dlqErr != nil {
		if errors.Is(dlqErr, producers.ErrDLQDisabled) {
			// nothing else can be done with it
			return nil
		}
		h.logger.Error("Failed to park message in DLQ", "message_key", string(key), "dlq_error", dlqErr)
		return cause
	}
	return nil
}
