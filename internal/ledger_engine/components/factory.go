package components

import (
	"log/slog"

	"github.com/blueshark0/pas/internal/config"
	"github.com/blueshark0/pas/internal/domain/account"
	"github.com/blueshark0/pas/internal/domain/entry"
	"github.com/blueshark0/pas/internal/domain/history"
	"github.com/blueshark0/pas/internal/domain/outbox"
	"github.com/blueshark0/pas/internal/domain/preset"
	"github.com/blueshark0/pas/internal/ledger_engine/service"
	"github.com/blueshark0/pas/internal/platform/persistence"
)

// Repositories groups the storage the engine is built on
type Repositories struct {
	Accounts account.Repository
	Entries  entry.Repository
	Presets  preset.Repository
	History  history.Repository
	Outbox   outbox.Repository
}

// Engine bundles the engine services sharing one ledger store and history log
type Engine struct {
	Ledger    service.LedgerStore
	History   service.HistoryLog
	Lifecycle service.PresetLifecycle
	Executor  service.Executor
	Operator  service.Operator
	Entries   service.EntryManager
	Pool      *service.WorkerPool
}

// Shutdown releases the executor's worker pool
func (e *Engine) Shutdown() {
	if e.Pool != nil {
		e.Pool.Shutdown()
	}
}

// CreateEngine wires the engine services with all their dependencies
func CreateEngine(
	txRunner persistence.TxRunner,
	repos Repositories,
	logger *slog.Logger,
	cfg *config.Config,
) (*Engine, error) {
	ledger := NewLedgerStore(repos.Accounts, logger.With("component", "ledger_store"))
	historyLog := NewHistoryLog(repos.History, repos.Outbox, logger.With("component", "history_log"))
	lifecycle := NewPresetLifecycle(repos.Presets, logger.With("component", "preset_lifecycle"))

	pool, err := service.NewWorkerPool(
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		return nil, err
	}
	logger.Info("Created executor worker pool", "pool_size", pool.Capacity())

	return &Engine{
		Ledger:    ledger,
		History:   historyLog,
		Lifecycle: lifecycle,
		Executor: service.NewExecutorService(txRunner, repos.Presets, ledger, historyLog, lifecycle, pool,
			cfg.Ledger.DefaultAccountID, logger.With("component", "executor")),
		Operator: service.NewOperatorService(txRunner, ledger, historyLog, repos.Entries,
			cfg.Ledger.Location(), logger.With("component", "operator")),
		Entries: service.NewEntryManagerService(txRunner, repos.Entries, ledger, historyLog,
			logger.With("component", "entry_manager")),
		Pool: pool,
	}, nil
}
