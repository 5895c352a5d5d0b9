package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/blueshark0/pas/internal/domain/account"
	"github.com/blueshark0/pas/internal/domain/preset"
	"github.com/blueshark0/pas/internal/domain/shared"
	engine "github.com/blueshark0/pas/internal/ledger_engine/service"
	"github.com/blueshark0/pas/internal/logger"
	"github.com/blueshark0/pas/internal/platform/messaging/producers"
	"github.com/google/uuid"
)

type PresetServiceImpl struct {
	presetRepo  preset.Repository
	accountRepo account.Repository
	lifecycle   engine.PresetLifecycle
	producer    producers.MessagePublisher
	logger      *slog.Logger
}

func NewPresetService(
	logger *slog.Logger,
	presetRepo preset.Repository,
	accountRepo account.Repository,
	lifecycle engine.PresetLifecycle,
	producer producers.MessagePublisher,
) PresetService {
	return &PresetServiceImpl{
		presetRepo:  presetRepo,
		accountRepo: accountRepo,
		lifecycle:   lifecycle,
		producer:    producer,
		logger:      logger,
	}
}

func (s *PresetServiceImpl) AddPreset(ctx context.Context, input NewPresetInput) (*preset.Transaction, error) {
	t, err := preset.NewTransaction(input.Type, input.Amount, input.ExecutionDate, input.Description, input.Recurrence, input.AccountID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccount(ctx, t.AccountID); err != nil {
		return nil, err
	}
	if err := s.presetRepo.Create(ctx, t); err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.logger).Info("Preset transaction added",
		"preset_id", t.ID, "execution_date", t.ExecutionDate.Format(shared.DateLayout), "recurrence", t.Recurrence.Type)
	return t, nil
}

func (s *PresetServiceImpl) GetPreset(ctx context.Context, id int64) (*preset.Transaction, error) {
	return s.presetRepo.GetByID(ctx, id)
}

func (s *PresetServiceImpl) ListPresets(ctx context.Context, status *preset.Status, page, perPage int) ([]*preset.Transaction, int64, error) {
	items, err := s.presetRepo.List(ctx, status, perPage, offset(page, perPage))
	if err != nil {
		return nil, 0, err
	}
	total, err := s.presetRepo.Count(ctx, status)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *PresetServiceImpl) UpdatePreset(ctx context.Context, id int64, patch preset.Patch) (*preset.Transaction, error) {
	t, err := s.presetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := t.Apply(patch); err != nil {
		return nil, err
	}
	if patch.AccountID != nil {
		if err := s.requireAccount(ctx, patch.AccountID); err != nil {
			return nil, err
		}
	}
	if err := s.presetRepo.Update(ctx, t); err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.logger).Info("Preset transaction updated", "preset_id", id)
	return t, nil
}

func (s *PresetServiceImpl) DeletePreset(ctx context.Context, id int64) error {
	t, err := s.presetRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := t.CanDelete(); err != nil {
		return err
	}
	if err := s.presetRepo.Delete(ctx, id); err != nil {
		return err
	}

	logger.FromContext(ctx, s.logger).Info("Preset transaction deleted", "preset_id", id)
	return nil
}

func (s *PresetServiceImpl) CancelPreset(ctx context.Context, id int64) (*preset.Transaction, error) {
	return s.lifecycle.Terminate(ctx, id)
}

func (s *PresetServiceImpl) RequestSweep(ctx context.Context, asOfDate string) (*shared.SweepRequest, error) {
	if asOfDate != "" {
		if _, err := shared.ParseDate("as_of_date", asOfDate); err != nil {
			return nil, err
		}
	}

	req := &shared.SweepRequest{
		RequestID:     uuid.New(),
		AsOfDate:      asOfDate,
		CorrelationID: logger.CorrelationID(ctx),
		RequestedAt:   time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, req.RequestID.String(), req); err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.logger).Info("Sweep request published", "request_id", req.RequestID.String(), "as_of_date", asOfDate)
	return req, nil
}

func (s *PresetServiceImpl) requireAccount(ctx context.Context, accountID *int64) error {
	if accountID == nil {
		return nil
	}
	_, err := s.accountRepo.GetByID(ctx, *accountID)
	return err
}
