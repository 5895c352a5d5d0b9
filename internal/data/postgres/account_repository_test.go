package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/blueshark0/pas/internal/domain/account"
	"github.com/blueshark0/pas/internal/domain/shared"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

var accountRowColumns = []string{"id", "name", "kind", "amount", "initial_balance", "description", "opened_on", "version", "created_at", "updated_at"}

func accountRow(id int64, amount decimal.Decimal, version int) []any {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []any{id, "Wallet", account.KindCash, amount, decimal.RequireFromString("100.00"), "", now, version, now, now}
}

func TestAccountRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: newTestLogger()}
	acc, err := account.NewAccount("Wallet", account.KindCash, decimal.RequireFromString("100.00"), time.Now(), "")
	require.NoError(t, err)

	query := regexp.QuoteMeta(`INSERT INTO accounts (name, kind, amount, initial_balance, description, opened_on, version, created_at, updated_at)`)

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(acc.Name, acc.Kind, acc.Amount, acc.InitialBalance, acc.Description, acc.OpenedOn, acc.Version, acc.CreatedAt, acc.UpdatedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

		err := repo.Create(ctx, acc)

		assert.NoError(t, err)
		assert.Equal(t, int64(42), acc.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		expectedErr := errors.New("db error")
		mock.ExpectQuery(query).WillReturnError(expectedErr)

		err := repo.Create(ctx, acc)

		assert.ErrorIs(t, err, expectedErr)
		assert.Contains(t, err.Error(), "failed to create account")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: newTestLogger()}
	query := regexp.QuoteMeta(`FROM accounts WHERE id = $1`)
	amount := decimal.RequireFromString("250.50")

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(int64(1)).
			WillReturnRows(pgxmock.NewRows(accountRowColumns).AddRow(accountRow(1, amount, 3)...))

		acc, err := repo.GetByID(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, int64(1), acc.ID)
		assert.Equal(t, account.KindCash, acc.Kind)
		assert.True(t, acc.Amount.Equal(amount))
		assert.Equal(t, 3, acc.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(int64(2)).WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByID(ctx, 2)

		var notFound account.ErrAccountNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, int64(2), notFound.AccountID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_List(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: newTestLogger()}
	mock.ExpectQuery(regexp.QuoteMeta(`FROM accounts ORDER BY id`)).
		WillReturnRows(pgxmock.NewRows(accountRowColumns).
			AddRow(accountRow(1, decimal.RequireFromString("10"), 1)...).
			AddRow(accountRow(2, decimal.RequireFromString("20"), 1)...))

	accounts, err := repo.List(ctx)

	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, int64(2), accounts[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_ApplyDelta(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: newTestLogger()}
	query := regexp.QuoteMeta(`SET amount = amount + $1, version = version + 1, updated_at = NOW() WHERE id = $2 AND version = $3`)
	delta := decimal.RequireFromString("-200.00")

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(delta, int64(1), 4).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.ApplyDelta(ctx, 1, delta, 4))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("version mismatch", func(t *testing.T) {
		mock.ExpectExec(query).WithArgs(delta, int64(1), 4).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.ApplyDelta(ctx, 1, delta, 4)

		var conflict account.ErrConcurrentModification
		assert.ErrorAs(t, err, &conflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_LockForUpdate(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: newTestLogger()}
	query := regexp.QuoteMeta(`FROM accounts WHERE id = $1 FOR UPDATE`)

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(int64(5)).
			WillReturnRows(pgxmock.NewRows(accountRowColumns).AddRow(accountRow(5, decimal.RequireFromString("500"), 2)...))

		acc, err := repo.LockForUpdate(ctx, 5)

		require.NoError(t, err)
		assert.Equal(t, int64(5), acc.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		dbErr := errors.New("lock timeout")
		mock.ExpectQuery(query).WithArgs(int64(5)).WillReturnError(dbErr)

		_, err := repo.LockForUpdate(ctx, 5)

		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAccountRepository_HasReferencesAndDelete(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: newTestLogger()}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE account_id = $1)`)).
		WithArgs(int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	referenced, err := repo.HasReferences(ctx, 9)
	require.NoError(t, err)
	assert.True(t, referenced)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM accounts WHERE id = $1`)).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err = repo.Delete(ctx, 9)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_WithTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &AccountRepository{querier: mock, logger: newTestLogger()}

	mock.ExpectBegin()
	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	txRepo := repo.WithTx(tx).(*AccountRepository)
	assert.Equal(t, tx, txRepo.querier)
	assert.Same(t, repo, repo.WithTx(nil))
}
