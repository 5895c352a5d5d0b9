package api_gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/blueshark0/pas/internal/api_gateway/handler"
	"github.com/blueshark0/pas/internal/api_gateway/middleware"
	"github.com/gin-gonic/gin"
)

type handlers struct {
	accounts *handler.AccountHandler
	balances *handler.BalanceHandler
	presets  *handler.PresetHandler
	entries  *handler.EntryHandler
	history  *handler.HistoryHandler
}

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, h handlers, health func(ctx context.Context) error) {
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", h.accounts.Create)
			accounts.GET("", h.accounts.List)
			accounts.GET("/:id", h.accounts.GetByID)
			accounts.DELETE("/:id", h.accounts.Delete)
			accounts.GET("/:id/activity", h.accounts.Activity)

			accounts.GET("/:id/balance", h.balances.Get)
			accounts.POST("/:id/balance/init", h.balances.Init)
			accounts.POST("/:id/balance/edit", h.balances.Edit)
			accounts.POST("/:id/adjust", h.balances.Adjust)
			accounts.GET("/:id/audit", h.balances.Audit)
		}

		v1.POST("/transfers", h.balances.Transfer)

		entries := v1.Group("/entries")
		{
			entries.POST("", h.entries.Create)
			entries.GET("", h.entries.List)
			entries.PUT("/:id", h.entries.Update)
			entries.DELETE("/:id", h.entries.Delete)
		}

		// Preset transaction operations
		transactions := v1.Group("/transactions")
		{
			transactions.POST("", h.presets.Create)
			transactions.GET("", h.presets.List)
			transactions.POST("/execute", h.presets.Execute)
			transactions.POST("/execute/async", h.presets.ExecuteAsync)
			transactions.GET("/:id", h.presets.GetByID)
			transactions.PUT("/:id", h.presets.Update)
			transactions.DELETE("/:id", h.presets.Delete)
			transactions.POST("/:id/cancel", h.presets.Cancel)
		}

		v1.GET("/history", h.history.List)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health(ctx); err != nil {
				logger.Warn("Health check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "timestamp": time.Now().UTC()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
