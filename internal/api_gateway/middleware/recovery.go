package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/blueshark0/pas/internal/logger"
	"github.com/gin-gonic/gin"
)

// CodeInternal is the envelope error code for a recovered panic
const CodeInternal = "INTERNAL_ERROR"

// Recovery turns a handler panic into a 500 envelope. A panic during a ledger
// operation has already rolled back its transaction, so the body never claims
// partial success. http.ErrAbortHandler is re-raised for net/http to drop the
// connection.
func Recovery(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if err, ok := r.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(r)
			}

			logger.FromContext(c.Request.Context(), base).Error("Panic recovered",
				"error", r,
				"stack", string(debug.Stack()),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)

			// a half-written body cannot be replaced
			if c.Writer.Written() {
				c.Abort()
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"data": nil,
				"error": gin.H{
					"code":    CodeInternal,
					"message": "An internal server error occurred",
				},
				"correlation_id": GetCorrelationID(c),
			})
		}()

		c.Next()
	}
}
