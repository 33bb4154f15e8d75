package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
)

// Worker runs registered tasks on a fixed interval, one goroutine per task.
type Worker struct {
	tasks  []Task
	config Config
	logger *slog.Logger

	wg     sync.WaitGroup
	stopCh chan struct{}
	once   sync.Once
}

// New creates a new Worker with the given configuration.
// The worker must be started with Start() and stopped with Stop().
func New(config Config, logger *slog.Logger) (*Worker, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Worker{
		config: config,
		logger: logger,
		stopCh: make(chan struct{}),
	}, nil
}

// Register adds a task. Call this before Start().
func (w *Worker) Register(task Task) {
	w.tasks = append(w.tasks, task)
	w.logger.Debug("Registered task", "task", task.Name())
}

// Start launches one loop per registered task.
func (w *Worker) Start(ctx context.Context) {
	for _, task := range w.tasks {
		w.wg.Add(1)
		go w.runLoop(ctx, task)
	}

	w.logger.Info("Worker started", "tasks", len(w.tasks), "interval", w.config.Interval)
}

// Stop signals all loops to stop and waits for them to finish.
// It respects the configured ShutdownTimeout and is safe to call twice.
func (w *Worker) Stop() {
	w.once.Do(func() {
		w.logger.Info("Stopping worker...")
		close(w.stopCh)
	})

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("Worker stopped gracefully")
	case <-time.After(w.config.ShutdownTimeout):
		w.logger.Warn("Worker shutdown timeout exceeded, a task may still be running")
	}
}

func (w *Worker) runLoop(ctx context.Context, task Task) {
	defer w.wg.Done()

	logger := w.logger.With("task", task.Name())

	if w.config.RunOnStart {
		w.runOnce(ctx, task, logger)
	}

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(ctx, task, logger)
		}
	}
}

// runOnce executes a single pass with the task timeout. Panics are recovered
// so one bad run does not stop the loop.
func (w *Worker) runOnce(ctx context.Context, task Task, logger *slog.Logger) {
	taskCtx, cancel := context.WithTimeout(ctx, w.config.TaskTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Task panicked", "panic", r)
			sentry.CurrentHub().Recover(r)
		}
	}()

	start := time.Now()
	if err := task.Run(taskCtx); err != nil {
		logger.Error("Task failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		sentry.CaptureException(fmt.Errorf("%s: %w", task.Name(), err))
		return
	}
	logger.Debug("Task completed", "duration_ms", time.Since(start).Milliseconds())
}
