package service

import (
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// WorkerPool runs batches of independent tasks on a bounded ants pool
type WorkerPool struct {
	pool   *ants.Pool
	logger *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPool(config WorkerPoolConfig, logger *slog.Logger) (*WorkerPool, error) {
	size := config.Size
	if size < 1 {
		size = 1
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}

	return &WorkerPool{
		pool:   pool,
		logger: logger,
	}, nil
}

// RunAll submits every task and waits for all of them to finish. A task the
// pool refuses runs on the calling goroutine instead of being dropped.
func (p *WorkerPool) RunAll(tasks []func()) {
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		run := task
		err := p.pool.Submit(func() {
			defer wg.Done()
			run()
		})
		if err != nil {
			p.logger.Warn("Worker pool rejected task, running inline", "error", err)
			run()
			wg.Done()
		}
	}
	wg.Wait()
}

// Shutdown releases the pool's workers
func (p *WorkerPool) Shutdown() {
	p.logger.Info("Shutting down worker pool", "running_workers", p.pool.Running())
	p.pool.Release()
}

func (p *WorkerPool) Running() int {
	return p.pool.Running()
}

func (p *WorkerPool) Capacity() int {
	return p.pool.Cap()
}
