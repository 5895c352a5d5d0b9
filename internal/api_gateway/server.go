package api_gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/blueshark0/pas/internal/api_gateway/handler"
	"github.com/blueshark0/pas/internal/api_gateway/service"
	"github.com/blueshark0/pas/internal/config"
	engine "github.com/blueshark0/pas/internal/ledger_engine/service"
	"github.com/gin-gonic/gin"
)

// Dependencies are the services the HTTP layer is built on
type Dependencies struct {
	Accounts service.AccountService
	Presets  service.PresetService
	Entries  service.EntryService
	History  service.HistoryService
	Operator engine.Operator
	Executor engine.Executor

	// Health reports whether storage is reachable; nil means always healthy
	Health func(ctx context.Context) error
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger // For structured logging
	httpServer *http.Server // Underlying HTTP server
	httpRouter *gin.Engine  // Gin router instance
	cfg        config.ServerConfig
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, deps Dependencies) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()
	loc := cfg.Ledger.Location()
	maxPage := cfg.Ledger.MaxPageSize

	setupRouter(log, httpRouter, handlers{
		accounts: handler.NewAccountHandler(log, deps.Accounts, loc, maxPage),
		balances: handler.NewBalanceHandler(log, deps.Operator, loc),
		presets:  handler.NewPresetHandler(log, deps.Presets, deps.Executor, loc, maxPage),
		entries:  handler.NewEntryHandler(log, deps.Entries, maxPage),
		history:  handler.NewHistoryHandler(log, deps.History, maxPage),
	}, deps.Health)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
		cfg:        cfg.Server,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server, waiting at most ShutdownTimeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
