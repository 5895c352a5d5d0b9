package handler

import (
	"log/slog"
	"time"

	"github.com/blueshark0/pas/internal/api_gateway/service"
	"github.com/blueshark0/pas/internal/domain/preset"
	"github.com/blueshark0/pas/internal/domain/shared"
	engine "github.com/blueshark0/pas/internal/ledger_engine/service"
	"github.com/blueshark0/pas/internal/logger"
	"github.com/gin-gonic/gin"
)

// PresetHandler handles preset transaction definitions and their execution
type PresetHandler struct {
	presetService service.PresetService
	executor      engine.Executor
	logger        *slog.Logger
	location      *time.Location
	maxPageSize   int
}

func NewPresetHandler(logger *slog.Logger, presetService service.PresetService, executor engine.Executor,
	location *time.Location, maxPageSize int) *PresetHandler {
	if location == nil {
		location = time.UTC
	}
	return &PresetHandler{
		presetService: presetService,
		executor:      executor,
		logger:        logger,
		location:      location,
		maxPageSize:   maxPageSize,
	}
}

func (h *PresetHandler) Create(c *gin.Context) {
	log := logger.FromContext(c.Request.Context(), h.logger)

	var req CreatePresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	txType, err := shared.ParseTransactionType(req.Type)
	if err != nil {
		RespondError(c, err)
		return
	}
	executionDate, err := shared.ParseDate("execution_date", req.ExecutionDate)
	if err != nil {
		RespondError(c, err)
		return
	}
	rule, err := req.Recurrence.toRule()
	if err != nil {
		RespondError(c, err)
		return
	}

	t, err := h.presetService.AddPreset(c.Request.Context(), service.NewPresetInput{
		AccountID:     req.AccountID,
		Type:          txType,
		Amount:        *req.Amount,
		ExecutionDate: executionDate,
		Description:   req.Description,
		Recurrence:    rule,
	})
	if err != nil {
		log.Warn("Failed to add preset transaction", "error", err)
		RespondError(c, err)
		return
	}
	RespondCreated(c, mapPreset(t))
}

// List pages through preset transactions, optionally filtered by ?status=
func (h *PresetHandler) List(c *gin.Context) {
	p, ok := bindPagination(c, h.maxPageSize)
	if !ok {
		return
	}

	var status *preset.Status
	if raw := c.Query("status"); raw != "" {
		st, err := preset.ParseStatus(raw)
		if err != nil {
			RespondError(c, err)
			return
		}
		status = &st
	}

	items, total, err := h.presetService.ListPresets(c.Request.Context(), status, p.Page, p.PerPage)
	if err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Error("Failed to list preset transactions", "error", err)
		RespondError(c, err)
		return
	}
	RespondWithPaginatedData(c, mapPresets(items), p.Page, p.PerPage, total)
}

func (h *PresetHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	t, err := h.presetService.GetPreset(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, mapPreset(t))
}

// Update patches a pending preset transaction
func (h *PresetHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdatePresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		RespondError(c, err)
		return
	}

	t, err := h.presetService.UpdatePreset(c.Request.Context(), id, patch)
	if err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Warn("Failed to update preset transaction", "presetID", id, "error", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, mapPreset(t))
}

func (h *PresetHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.presetService.DeletePreset(c.Request.Context(), id); err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Warn("Failed to delete preset transaction", "presetID", id, "error", err)
		RespondError(c, err)
		return
	}
	RespondNoContent(c)
}

// Cancel terminates a pending row so that no further occurrence is generated
func (h *PresetHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	t, err := h.presetService.CancelPreset(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, mapPreset(t))
}

// Execute runs due preset transactions synchronously. A sweep in which some
// rows failed still answers 200 with the per-row outcome and an error block.
func (h *PresetHandler) Execute(c *gin.Context) {
	log := logger.FromContext(c.Request.Context(), h.logger)

	asOf, err := dateOrToday("as_of_date", c.Query("as_of_date"), h.location)
	if err != nil {
		RespondError(c, err)
		return
	}

	res, err := h.executor.ExecuteDue(c.Request.Context(), asOf)
	if err != nil {
		log.Error("Sweep aborted", "as_of", asOf.Format(shared.DateLayout), "error", err)
		RespondError(c, err)
		return
	}

	log.Info("Sweep finished", "as_of", asOf.Format(shared.DateLayout),
		"executed", len(res.Executed), "failed", len(res.Failed), "skipped", len(res.Skipped))
	if perr := res.Err(); perr != nil {
		RespondPartial(c, mapExecution(res), perr)
		return
	}
	RespondOK(c, mapExecution(res))
}

// ExecuteAsync queues a sweep request for the scheduler and answers 202
func (h *PresetHandler) ExecuteAsync(c *gin.Context) {
	req, err := h.presetService.RequestSweep(c.Request.Context(), c.Query("as_of_date"))
	if err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Error("Failed to queue sweep", "error", err)
		RespondError(c, err)
		return
	}
	RespondAccepted(c, SweepAcceptedResponse{RequestID: req.RequestID.String(), AsOfDate: req.AsOfDate})
}
