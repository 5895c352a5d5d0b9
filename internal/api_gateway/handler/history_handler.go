package handler

import (
	"log/slog"

	"github.com/blueshark0/pas/internal/api_gateway/service"
	"github.com/blueshark0/pas/internal/logger"
	"github.com/gin-gonic/gin"
)

// HistoryHandler lists balance history events, newest first
type HistoryHandler struct {
	historyService service.HistoryService
	logger         *slog.Logger
	maxPageSize    int
}

func NewHistoryHandler(logger *slog.Logger, historyService service.HistoryService, maxPageSize int) *HistoryHandler {
	return &HistoryHandler{historyService: historyService, logger: logger, maxPageSize: maxPageSize}
}

func (h *HistoryHandler) List(c *gin.Context) {
	p, ok := bindPagination(c, h.maxPageSize)
	if !ok {
		return
	}
	var q HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	filter, err := q.toFilter()
	if err != nil {
		RespondError(c, err)
		return
	}

	events, total, err := h.historyService.ListHistory(c.Request.Context(), filter, p.Page, p.PerPage)
	if err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Error("Failed to list history", "error", err)
		RespondError(c, err)
		return
	}
	RespondWithPaginatedData(c, mapEvents(events), p.Page, p.PerPage, total)
}
