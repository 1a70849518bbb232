package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is a unit of recurring background work.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// NewTask adapts a function to the Task interface.
func NewTask(name string, fn func(ctx context.Context) error) Task {
	return &funcTask{name: name, fn: fn}
}

type funcTask struct {
	name string
	fn   func(ctx context.Context) error
}

func (t *funcTask) Name() string                  { return t.name }
func (t *funcTask) Run(ctx context.Context) error { return t.fn(ctx) }

// Config holds periodic runner configuration
type Config struct {
	// Interval is the time between consecutive runs
	Interval time.Duration

	// RunTimeout bounds a single run; zero means no timeout
	RunTimeout time.Duration

	// RunAtStart triggers an immediate run when the runner starts
	RunAtStart bool
}

// DefaultConfig returns default periodic runner configuration
func DefaultConfig() Config {
	return Config{
		Interval:   5 * time.Minute,
		RunTimeout: time.Minute,
	}
}

// Periodic runs a task on a fixed interval until stopped
type Periodic struct {
	config Config
	task   Task
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewPeriodic creates a new periodic runner for the given task
func NewPeriodic(config Config, task Task, logger *zap.Logger) *Periodic {
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}
	return &Periodic{
		config: config,
		task:   task,
		logger: logger,
	}
}

// Start starts the runner
func (p *Periodic) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = true
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.loop(ctx)

	p.logger.Info("periodic task started",
		zap.String("task", p.task.Name()),
		zap.Duration("interval", p.config.Interval),
	)

	return nil
}

// Stop gracefully stops the runner, waiting for an in-flight run to finish
func (p *Periodic) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = false
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("periodic task stopped", zap.String("task", p.task.Name()))
		return nil
	case <-ctx.Done():
		p.logger.Warn("periodic task stop timed out", zap.String("task", p.task.Name()))
		return ctx.Err()
	}
}

func (p *Periodic) loop(ctx context.Context) {
	defer p.wg.Done()

	if p.config.RunAtStart {
		p.runOnce(ctx)
	}

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *Periodic) runOnce(ctx context.Context) {
	runCtx := ctx
	if p.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.config.RunTimeout)
		defer cancel()
	}

	start := time.Now()
	if err := p.task.Run(runCtx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Error("periodic task run failed",
			zap.String("task", p.task.Name()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return
	}

	p.logger.Debug("periodic task run completed",
		zap.String("task", p.task.Name()),
		zap.Duration("elapsed", time.Since(start)),
	)
}
