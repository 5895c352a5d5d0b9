package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blueshark0/pas/internal/domain/account"
	"github.com/blueshark0/pas/internal/domain/activity"
	"github.com/blueshark0/pas/internal/logger"
)

type AccountServiceImpl struct {
	accountRepo  account.Repository
	activityRepo activity.Repository
	logger       *slog.Logger
}

func NewAccountService(logger *slog.Logger, accountRepo account.Repository, activityRepo activity.Repository) AccountService {
	return &AccountServiceImpl{
		accountRepo:  accountRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

func (s *AccountServiceImpl) CreateAccount(ctx context.Context, input NewAccountInput) (*account.Account, error) {
	acc, err := account.NewAccount(input.Name, input.Kind, input.InitialBalance, input.OpenedOn, input.Description)
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.Create(ctx, acc); err != nil {
		return nil, err
	}

	logger.FromContext(ctx, s.logger).Info("Account created", "account_id", acc.ID, "kind", acc.Kind)
	return acc, nil
}

func (s *AccountServiceImpl) GetAccount(ctx context.Context, id int64) (*account.Account, error) {
	return s.accountRepo.GetByID(ctx, id)
}

func (s *AccountServiceImpl) ListAccounts(ctx context.Context) ([]*account.Account, error) {
	return s.accountRepo.List(ctx)
}

func (s *AccountServiceImpl) DeleteAccount(ctx context.Context, id int64) error {
	if _, err := s.accountRepo.GetByID(ctx, id); err != nil {
		return err
	}

	referenced, err := s.accountRepo.HasReferences(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check references of account %d: %w", id, err)
	}
	if referenced {
		return account.ErrAccountInUse{AccountID: id}
	}

	if err := s.accountRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx, s.logger).Info("Account deleted", "account_id", id)
	return nil
}

// ListActivity reads the Mongo projection; it may trail the history log by one poll interval
func (s *AccountServiceImpl) ListActivity(ctx context.Context, accountID int64, page, perPage int) ([]*activity.Record, int64, error) {
	if _, err := s.accountRepo.GetByID(ctx, accountID); err != nil {
		return nil, 0, err
	}

	records, err := s.activityRepo.ListByAccount(ctx, accountID, perPage, offset(page, perPage))
	if err != nil {
		return nil, 0, err
	}
	total, err := s.activityRepo.CountByAccount(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
