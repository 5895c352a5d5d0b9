package handler

import (
	"log/slog"
	"time"

	"github.com/blueshark0/pas/internal/api_gateway/service"
	"github.com/blueshark0/pas/internal/domain/account"
	"github.com/blueshark0/pas/internal/logger"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
	location       *time.Location
	maxPageSize    int
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService, location *time.Location, maxPageSize int) *AccountHandler {
	if location == nil {
		location = time.UTC
	}
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
		location:       location,
		maxPageSize:    maxPageSize,
	}
}

// Create opens a new account; the initial balance also becomes its current amount
func (h *AccountHandler) Create(c *gin.Context) {
	log := logger.FromContext(c.Request.Context(), h.logger)

	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	openedOn, err := dateOrToday("opened_on", req.OpenedOn, h.location)
	if err != nil {
		RespondError(c, err)
		return
	}

	acc, err := h.accountService.CreateAccount(c.Request.Context(), service.NewAccountInput{
		Name:           req.Name,
		Kind:           account.ParseKind(req.Kind),
		InitialBalance: req.InitialBalance,
		OpenedOn:       openedOn,
		Description:    req.Description,
	})
	if err != nil {
		log.Warn("Failed to create account", "error", err)
		RespondError(c, err)
		return
	}

	RespondCreated(c, mapAccount(acc))
}

func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.accountService.ListAccounts(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Error("Failed to list accounts", "error", err)
		RespondError(c, err)
		return
	}

	out := make([]AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, mapAccount(acc))
	}
	RespondOK(c, out)
}

// GetByID retrieves an account by its ID, returning 404 if not found
func (h *AccountHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	acc, err := h.accountService.GetAccount(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, mapAccount(acc))
}

// Delete removes an account that nothing references anymore
func (h *AccountHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.accountService.DeleteAccount(c.Request.Context(), id); err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Warn("Failed to delete account", "accountID", id, "error", err)
		RespondError(c, err)
		return
	}
	RespondNoContent(c)
}

// Activity pages through the account's projected balance changes, newest first
func (h *AccountHandler) Activity(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, ok := bindPagination(c, h.maxPageSize)
	if !ok {
		return
	}

	records, total, err := h.accountService.ListActivity(c.Request.Context(), id, p.Page, p.PerPage)
	if err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Error("Failed to list activity", "accountID", id, "error", err)
		RespondError(c, err)
		return
	}
	RespondWithPaginatedData(c, mapActivity(records), p.Page, p.PerPage, total)
}

