// Package workerpool provides a fixed-size pool of goroutines shared by every
// deck build in a run.
package workerpool

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
)

// ErrClosed is returned by Submit after Close has been called.
var ErrClosed = errors.New("worker pool closed")

// Task is a unit of work run on a pool worker.
type Task func()

// Pool runs submitted tasks on a fixed number of workers. Submission is a
// hand-off: once Submit returns nil a worker owns the task and will run it to
// completion, even if the pool is closed afterwards.
type Pool struct {
	tasks  chan Task
	closed chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	logger *slog.Logger
	size   int
}

// Config configures a pool.
type Config struct {
	Workers int // Number of workers (0 = runtime.GOMAXPROCS)
	Logger  *slog.Logger
}

// New starts a pool.
func New(cfg Config) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	p := &Pool{
		tasks:  make(chan Task),
		closed: make(chan struct{}),
		logger: cfg.Logger,
		size:   cfg.Workers,
	}

	for i := 0; i < cfg.Workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	p.logger.Debug("Worker pool started", "workers", cfg.Workers)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.size
}

// Submit hands task to an idle worker, blocking until one is free, ctx is
// done, or the pool is closed.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	select {
	case <-p.closed:
		return ErrClosed
	default:
	}

	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.closed:
		return ErrClosed
	}
}

// Close stops accepting tasks and waits for running tasks to finish.
func (p *Pool) Close() error {
	p.once.Do(func() {
		close(p.closed)
	})
	p.wg.Wait()
	return nil
}

// worker runs tasks until the pool is closed.
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.closed:
			return
		case task := <-p.tasks:
			p.run(task)
		}
	}
}

// run executes one task, containing panics so one bad task cannot take the
// worker down with it.
func (p *Pool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Worker task panicked", "panic", r)
		}
	}()
	task()
}

// Group tracks a batch of tasks submitted to a shared pool so the caller can
// wait for just its own work.
type Group struct {
	pool *Pool
	wg   sync.WaitGroup
}

// NewGroup returns a Group bound to p.
func (p *Pool) NewGroup() *Group {
	return &Group{pool: p}
}

// Go submits task. On error the task was not accepted and will not run.
func (g *Group) Go(ctx context.Context, task Task) error {
	g.wg.Add(1)
	err := g.pool.Submit(ctx, func() {
		defer g.wg.Done()
		task()
	})
	if err != nil {
		g.wg.Done()
	}
	return err
}

// Wait blocks until every accepted task has finished.
func (g *Group) Wait() {
	g.wg.Wait()
}
