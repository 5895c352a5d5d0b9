package service

import (
	"context"

	"github.com/blueshark0/pas/internal/domain/history"
	"github.com/blueshark0/pas/internal/domain/shared"
	engine "github.com/blueshark0/pas/internal/ledger_engine/service"
)

type HistoryServiceImpl struct {
	log engine.HistoryLog
}

func NewHistoryService(log engine.HistoryLog) HistoryService {
	return &HistoryServiceImpl{log: log}
}

// ListHistory widens the filter's date range to whole days
func (s *HistoryServiceImpl) ListHistory(ctx context.Context, filter history.Filter, page, perPage int) ([]*history.Event, int64, error) {
	if filter.From != nil {
		from := shared.DateOnly(*filter.From)
		filter.From = &from
	}
	if filter.To != nil {
		to := shared.EndOfDay(*filter.To)
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, 0, shared.NewValidationError("to", "must not be before from")
	}
	return s.log.List(ctx, filter, perPage, offset(page, perPage))
}
