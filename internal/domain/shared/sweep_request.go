package shared

import (
	"time"

	"github.com/google/uuid"
)

// SweepRequest defines a Kafka message asking the scheduler to execute due preset transactions
type SweepRequest struct {
	RequestID     uuid.UUID `json:"request_id"`
	AsOfDate      string    `json:"as_of_date,omitempty"` // YYYY-MM-DD, empty means today
	CorrelationID string    `json:"correlation_id"`
	RequestedAt   time.Time `json:"requested_at"`
}
