package service

import (
	"context"

	"github.com/blueshark0/pas/internal/domain/entry"
	engine "github.com/blueshark0/pas/internal/ledger_engine/service"
)

// EntryServiceImpl routes mutations through the engine, which keeps the
// balance and history in step, and reads straight from the repository
type EntryServiceImpl struct {
	manager   engine.EntryManager
	entryRepo entry.Repository
}

func NewEntryService(manager engine.EntryManager, entryRepo entry.Repository) EntryService {
	return &EntryServiceImpl{manager: manager, entryRepo: entryRepo}
}

func (s *EntryServiceImpl) CreateEntry(ctx context.Context, draft entry.Draft) (*entry.Entry, error) {
	return s.manager.Create(ctx, draft)
}

func (s *EntryServiceImpl) UpdateEntry(ctx context.Context, id int64, patch entry.Patch) (*entry.Entry, error) {
	return s.manager.Update(ctx, id, patch)
}

func (s *EntryServiceImpl) DeleteEntry(ctx context.Context, id int64) error {
	return s.manager.Delete(ctx, id)
}

func (s *EntryServiceImpl) ListEntries(ctx context.Context, filter entry.Filter, page, perPage int) ([]*entry.Entry, int64, error) {
	items, err := s.entryRepo.List(ctx, filter, perPage, offset(page, perPage))
	if err != nil {
		return nil, 0, err
	}
	total, err := s.entryRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
