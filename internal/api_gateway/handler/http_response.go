package handler

import (
	"errors"
	"net/http"

	"github.com/blueshark0/pas/internal/api_gateway/middleware"
	"github.com/blueshark0/pas/internal/domain/account"
	"github.com/blueshark0/pas/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// Response is the envelope of every API response: data on success, error on
// failure, both for a sweep that partially failed
type Response struct {
	Data          any        `json:"data,omitempty"`
	Error         *ErrorInfo `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Meta          *MetaInfo  `json:"meta,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MetaInfo struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
}

// Error codes
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeNotFound           = "NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeNegativeAmount     = "NEGATIVE_AMOUNT"
	CodeInvalidTransition  = "INVALID_STATE_TRANSITION"
	CodeInsufficientFunds  = "INSUFFICIENT_FUNDS"
	CodeAccountInUse       = "ACCOUNT_IN_USE"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	CodePartialExecution   = "PARTIAL_EXECUTION_FAILURE"
	CodeInternal           = "INTERNAL_ERROR"
)

func newMeta(page, perPage int, totalItems int64) *MetaInfo {
	totalPages := int(totalItems / int64(perPage))
	if totalItems%int64(perPage) > 0 {
		totalPages++
	}
	return &MetaInfo{
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		TotalItems: totalItems,
	}
}

// RespondWithData sends a JSON response with data
func RespondWithData(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, &Response{Data: data, CorrelationID: middleware.GetCorrelationID(c)})
}

// RespondWithPaginatedData sends a JSON response with data and page metadata
func RespondWithPaginatedData(c *gin.Context, data any, page, perPage int, totalItems int64) {
	c.JSON(http.StatusOK, &Response{
		Data:          data,
		CorrelationID: middleware.GetCorrelationID(c),
		Meta:          newMeta(page, perPage, totalItems),
	})
}

// RespondWithError sends a JSON response with an error
func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, &Response{
		Error:         &ErrorInfo{Code: code, Message: message},
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

func RespondOK(c *gin.Context, data any) {
	RespondWithData(c, http.StatusOK, data)
}

func RespondCreated(c *gin.Context, data any) {
	RespondWithData(c, http.StatusCreated, data)
}

func RespondAccepted(c *gin.Context, data any) {
	RespondWithData(c, http.StatusAccepted, data)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, CodeBadRequest, message)
}

// RespondError maps err to its category's status and code. Unclassified
// errors are reported as internal without leaking their message.
func RespondError(c *gin.Context, err error) {
	status, code := classify(err)
	message := err.Error()
	if code == CodeInternal {
		message = "An internal server error occurred"
	}
	RespondWithError(c, status, code, message)
}

// RespondPartial sends data together with the error that made it partial
func RespondPartial(c *gin.Context, data any, err error) {
	c.JSON(http.StatusOK, &Response{
		Data:          data,
		Error:         &ErrorInfo{Code: CodePartialExecution, Message: err.Error()},
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

func classify(err error) (int, string) {
	var inUse account.ErrAccountInUse
	switch {
	case errors.As(err, &inUse):
		return http.StatusConflict, CodeAccountInUse
	case errors.Is(err, shared.ErrNegativeAmount):
		return http.StatusBadRequest, CodeNegativeAmount
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, shared.ErrInvalidStateTransition):
		return http.StatusConflict, CodeInvalidTransition
	case errors.Is(err, shared.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, CodeInsufficientFunds
	case errors.Is(err, shared.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, CodeStorageUnavailable
	case errors.Is(err, shared.ErrPartialExecutionFailure):
		return http.StatusOK, CodePartialExecution
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
