package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/blueshark0/pas/internal/api_gateway/service"
	"github.com/blueshark0/pas/internal/domain/preset"
	"github.com/blueshark0/pas/internal/domain/recurrence"
	"github.com/blueshark0/pas/internal/domain/shared"
	engine "github.com/blueshark0/pas/internal/ledger_engine/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPresetRouter(svc *MockPresetService, exec *MockExecutor) http.Handler {
	h := NewPresetHandler(quietLogger(), svc, exec, time.UTC, 50)
	r := setupTestRouter()
	r.POST("/transactions", h.Create)
	r.GET("/transactions", h.List)
	r.POST("/transactions/execute", h.Execute)
	r.POST("/transactions/execute/async", h.ExecuteAsync)
	r.GET("/transactions/:id", h.GetByID)
	r.PUT("/transactions/:id", h.Update)
	r.DELETE("/transactions/:id", h.Delete)
	r.POST("/transactions/:id/cancel", h.Cancel)
	return r
}

func samplePreset(status preset.Status) *preset.Transaction {
	accountID := int64(1)
	return &preset.Transaction{
		ID:            10,
		AccountID:     &accountID,
		Type:          shared.TransactionTypeExpense,
		Amount:        decimal.RequireFromString("45"),
		ExecutionDate: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Description:   "rent",
		Status:        status,
		Recurrence:    recurrence.Rule{Type: recurrence.TypeMonthly, Interval: 1},
	}
}

func TestPresetHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(MockPresetService)
		svc.On("AddPreset", mock.Anything, mock.MatchedBy(func(in service.NewPresetInput) bool {
			return in.Type == shared.TransactionTypeExpense &&
				in.Amount.Equal(decimal.RequireFromString("45")) &&
				in.ExecutionDate.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) &&
				in.Recurrence.Type == recurrence.TypeMonthly &&
				in.Recurrence.Interval == 1 &&
				in.AccountID != nil && *in.AccountID == 1
		})).Return(samplePreset(preset.StatusPending), nil)

		w, env := perform(t, newPresetRouter(svc, new(MockExecutor)), http.MethodPost, "/transactions",
			`{"account_id":1,"type":"expense","amount":"45","execution_date":"2024-01-31","description":"rent","recurrence":{"type":"monthly"}}`)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp PresetResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, "PENDING", resp.Status)
		assert.True(t, resp.Recurring)
		assert.Equal(t, "MONTHLY", resp.Recurrence.Type)
		assert.Equal(t, "45.00", resp.Amount)
		svc.AssertExpectations(t)
	})

	t.Run("UnknownType", func(t *testing.T) {
		svc := new(MockPresetService)
		w, env := perform(t, newPresetRouter(svc, new(MockExecutor)), http.MethodPost, "/transactions",
			`{"type":"gift","amount":"45","execution_date":"2024-01-31"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, CodeValidation, env.Error.Code)
	})

	t.Run("UnknownRecurrence", func(t *testing.T) {
		svc := new(MockPresetService)
		w, env := perform(t, newPresetRouter(svc, new(MockExecutor)), http.MethodPost, "/transactions",
			`{"type":"income","amount":"45","execution_date":"2024-01-31","recurrence":{"type":"fortnightly"}}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, CodeValidation, env.Error.Code)
	})
}

func TestPresetHandler_List(t *testing.T) {
	t.Run("StatusFilter", func(t *testing.T) {
		svc := new(MockPresetService)
		svc.On("ListPresets", mock.Anything, mock.MatchedBy(func(st *preset.Status) bool {
			return st != nil && *st == preset.StatusExecuted
		}), 1, 20).Return([]*preset.Transaction{samplePreset(preset.StatusExecuted)}, int64(1), nil)

		w, env := perform(t, newPresetRouter(svc, new(MockExecutor)), http.MethodGet, "/transactions?status=executed", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, env.Meta.TotalPages)
		svc.AssertExpectations(t)
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		svc := new(MockPresetService)
		w, _ := perform(t, newPresetRouter(svc, new(MockExecutor)), http.MethodGet, "/transactions?status=done", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPresetHandler_UpdateAndDelete(t *testing.T) {
	t.Run("UpdatePatch", func(t *testing.T) {
		svc := new(MockPresetService)
		svc.On("UpdatePreset", mock.Anything, int64(10), mock.MatchedBy(func(p preset.Patch) bool {
			return p.Amount != nil && p.Amount.Equal(decimal.RequireFromString("50")) &&
				p.ExecutionDate != nil && p.ExecutionDate.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) &&
				p.Type == nil && p.Recurrence == nil
		})).Return(samplePreset(preset.StatusPending), nil)

		w, _ := perform(t, newPresetRouter(svc, new(MockExecutor)), http.MethodPut, "/transactions/10",
			`{"amount":"50","execution_date":"2024-02-01"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("UpdateExecutedRow", func(t *testing.T) {
		svc := new(MockPresetService)
		svc.On("UpdatePreset", mock.Anything, int64(10), mock.Anything).Return(nil, preset.ErrInvalidTransition{
			ID: 10, From: preset.StatusExecuted, To: preset.StatusPending,
		})

		w, env := perform(t, newPresetRouter(svc, new(MockExecutor)), http.MethodPut, "/transactions/10", `{"amount":"50"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, CodeInvalidTransition, env.Error.Code)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		svc := new(MockPresetService)
		svc.On("DeletePreset", mock.Anything, int64(11)).Return(preset.ErrPresetNotFound{ID: 11})

		w, env := perform(t, newPresetRouter(svc, new(MockExecutor)), http.MethodDelete, "/transactions/11", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, CodeNotFound, env.Error.Code)
	})

	t.Run("Cancel", func(t *testing.T) {
		svc := new(MockPresetService)
		svc.On("CancelPreset", mock.Anything, int64(10)).Return(samplePreset(preset.StatusTerminated), nil)

		w, env := perform(t, newPresetRouter(svc, new(MockExecutor)), http.MethodPost, "/transactions/10/cancel", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp PresetResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, "TERMINATED", resp.Status)
	})
}

func TestPresetHandler_Execute(t *testing.T) {
	asOf := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	t.Run("AllExecuted", func(t *testing.T) {
		exec := new(MockExecutor)
		exec.On("ExecuteDue", mock.Anything, asOf).Return(&engine.ExecutionResult{
			AsOf: asOf,
			Executed: []engine.ExecutedItem{{
				PresetID: 10, AccountID: 1, ExecutionDate: asOf,
				AmountChange: decimal.RequireFromString("-45"), BalanceAfter: decimal.RequireFromString("55"),
			}},
			FinalBalances: map[int64]decimal.Decimal{1: decimal.RequireFromString("55")},
		}, nil)

		w, env := perform(t, newPresetRouter(new(MockPresetService), exec), http.MethodPost, "/transactions/execute?as_of_date=2024-03-31", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, env.Error)
		var resp ExecutionResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		require.Len(t, resp.Executed, 1)
		assert.Equal(t, "-45.00", resp.Executed[0].AmountChange)
		assert.Equal(t, "55.00", resp.FinalBalances[1])
	})

	t.Run("PartialFailure", func(t *testing.T) {
		exec := new(MockExecutor)
		exec.On("ExecuteDue", mock.Anything, asOf).Return(&engine.ExecutionResult{
			AsOf:          asOf,
			Failed:        []engine.FailedItem{{PresetID: 11, AccountID: 999, ExecutionDate: asOf, Reason: "account 999 not found"}},
			FinalBalances: map[int64]decimal.Decimal{},
		}, nil)

		w, env := perform(t, newPresetRouter(new(MockPresetService), exec), http.MethodPost, "/transactions/execute?as_of_date=2024-03-31", nil)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, CodePartialExecution, env.Error.Code)
		var resp ExecutionResponse
		require.NoError(t, json.Unmarshal(env.Data, &resp))
		require.Len(t, resp.Failed, 1)
		assert.Equal(t, int64(11), resp.Failed[0].PresetID)
	})

	t.Run("StorageUnavailable", func(t *testing.T) {
		exec := new(MockExecutor)
		exec.On("ExecuteDue", mock.Anything, asOf).Return(nil, errors.Join(shared.ErrStorageUnavailable, errors.New("connection refused")))

		w, env := perform(t, newPresetRouter(new(MockPresetService), exec), http.MethodPost, "/transactions/execute?as_of_date=2024-03-31", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, CodeStorageUnavailable, env.Error.Code)
	})

	t.Run("MalformedAsOf", func(t *testing.T) {
		exec := new(MockExecutor)
		w, _ := perform(t, newPresetRouter(new(MockPresetService), exec), http.MethodPost, "/transactions/execute?as_of_date=31-03-2024", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		exec.AssertNotCalled(t, "ExecuteDue", mock.Anything, mock.Anything)
	})
}

func TestPresetHandler_ExecuteAsync(t *testing.T) {
	svc := new(MockPresetService)
	requestID := uuid.New()
	svc.On("RequestSweep", mock.Anything, "2024-03-31").Return(&shared.SweepRequest{RequestID: requestID, AsOfDate: "2024-03-31"}, nil)

	w, env := perform(t, newPresetRouter(svc, new(MockExecutor)), http.MethodPost, "/transactions/execute/async?as_of_date=2024-03-31", nil)

	require.Equal(t, http.StatusAccepted, w.Code)
	var resp SweepAcceptedResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, requestID.String(), resp.RequestID)
}
