package handler

import (
	"log/slog"

	"github.com/blueshark0/pas/internal/api_gateway/service"
	"github.com/blueshark0/pas/internal/logger"
	"github.com/gin-gonic/gin"
)

// EntryHandler handles income and expense entries
type EntryHandler struct {
	entryService service.EntryService
	logger       *slog.Logger
	maxPageSize  int
}

func NewEntryHandler(logger *slog.Logger, entryService service.EntryService, maxPageSize int) *EntryHandler {
	return &EntryHandler{entryService: entryService, logger: logger, maxPageSize: maxPageSize}
}

func (h *EntryHandler) Create(c *gin.Context) {
	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	draft, err := req.toDraft()
	if err != nil {
		RespondError(c, err)
		return
	}

	e, err := h.entryService.CreateEntry(c.Request.Context(), draft)
	if err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Warn("Failed to create entry", "accountID", req.AccountID, "error", err)
		RespondError(c, err)
		return
	}
	RespondCreated(c, mapEntry(e))
}

func (h *EntryHandler) List(c *gin.Context) {
	p, ok := bindPagination(c, h.maxPageSize)
	if !ok {
		return
	}
	var q EntryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	filter, err := q.toFilter()
	if err != nil {
		RespondError(c, err)
		return
	}

	items, total, err := h.entryService.ListEntries(c.Request.Context(), filter, p.Page, p.PerPage)
	if err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Error("Failed to list entries", "error", err)
		RespondError(c, err)
		return
	}
	RespondWithPaginatedData(c, mapEntries(items), p.Page, p.PerPage, total)
}

// Update edits an entry; the balance moves by the change in its contribution
func (h *EntryHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		RespondError(c, err)
		return
	}

	e, err := h.entryService.UpdateEntry(c.Request.Context(), id, patch)
	if err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Warn("Failed to update entry", "entryID", id, "error", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, mapEntry(e))
}

func (h *EntryHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.entryService.DeleteEntry(c.Request.Context(), id); err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Warn("Failed to delete entry", "entryID", id, "error", err)
		RespondError(c, err)
		return
	}
	RespondNoContent(c)
}
