package handler

import (
	"log/slog"
	"time"

	"github.com/blueshark0/pas/internal/domain/shared"
	engine "github.com/blueshark0/pas/internal/ledger_engine/service"
	"github.com/blueshark0/pas/internal/logger"
	"github.com/gin-gonic/gin"
)

// BalanceHandler exposes balance reads, corrections and transfers
type BalanceHandler struct {
	operator engine.Operator
	logger   *slog.Logger
	location *time.Location
}

func NewBalanceHandler(logger *slog.Logger, operator engine.Operator, location *time.Location) *BalanceHandler {
	if location == nil {
		location = time.UTC
	}
	return &BalanceHandler{operator: operator, logger: logger, location: location}
}

// Get returns the current amount of an account
func (h *BalanceHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	acc, err := h.operator.Balance(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, mapBalance(acc))
}

// Init resets both the initial balance and the current amount
func (h *BalanceHandler) Init(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.operator.InitBalance(c.Request.Context(), id, *req.Amount)
	if err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Warn("Failed to init balance", "accountID", id, "error", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, mapBalance(acc))
}

// Edit overwrites the current amount and records the difference as a manual edit
func (h *BalanceHandler) Edit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	res, err := h.operator.EditBalance(c.Request.Context(), id, *req.Amount)
	if err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Warn("Failed to edit balance", "accountID", id, "error", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, mapAdjustment(res))
}

// Adjust reconciles the account to a target amount through a balancing entry
func (h *BalanceHandler) Adjust(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	var d time.Time
	if req.Date != "" {
		var err error
		if d, err = shared.ParseDate("date", req.Date); err != nil {
			RespondError(c, err)
			return
		}
	}

	res, err := h.operator.AdjustBalance(c.Request.Context(), engine.AdjustmentRequest{
		AccountID:   id,
		Target:      *req.Target,
		Date:        d,
		Description: req.Description,
	})
	if err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Warn("Failed to adjust balance", "accountID", id, "error", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, mapAdjustment(res))
}

// Audit replays the account's history and reports whether it matches the stored amount
func (h *BalanceHandler) Audit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	replay, err := h.operator.VerifyAccount(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	if !replay.Consistent {
		logger.FromContext(c.Request.Context(), h.logger).Error("Balance history mismatch",
			"accountID", id, "replayed", replay.ReplayedAmount.String(), "current", replay.CurrentAmount.String())
	}
	RespondOK(c, replay)
}

func (h *BalanceHandler) Transfer(c *gin.Context) {
	log := logger.FromContext(c.Request.Context(), h.logger)

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	var d time.Time
	if req.Date != "" {
		var err error
		if d, err = shared.ParseDate("date", req.Date); err != nil {
			RespondError(c, err)
			return
		}
	}

	res, err := h.operator.Transfer(c.Request.Context(), engine.TransferRequest{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        *req.Amount,
		Date:          d,
		Description:   req.Description,
	})
	if err != nil {
		log.Warn("Transfer failed", "from", req.FromAccountID, "to", req.ToAccountID, "error", err)
		RespondError(c, err)
		return
	}

	log.Info("Transfer completed", "from", req.FromAccountID, "to", req.ToAccountID, "amount", req.Amount.String())
	RespondOK(c, TransferResponse{
		FromBalance: mapBalance(res.From),
		ToBalance:   mapBalance(res.To),
		FromEntryID: res.FromEntryID,
		ToEntryID:   res.ToEntryID,
	})
}

func mapAdjustment(res *engine.AdjustmentResult) AdjustmentResponse {
	return AdjustmentResponse{
		AccountID: res.Account.ID,
		Amount:    money(res.Account.Amount),
		Delta:     money(res.Delta),
		Adjusted:  res.Adjusted,
		EntryID:   res.EntryID,
		EventID:   res.EventID,
	}
}
