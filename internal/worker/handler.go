package worker

import (
	"context"
	"time"

	"github.com/DukeRupert/vitrine/internal/metrics"
)

// Task is a unit of periodic background work.
type Task interface {
	// Name identifies the task in logs.
	Name() string

	// Run performs one pass. An error is logged and the task runs again at
	// the next tick.
	Run(ctx context.Context) error
}

// Expirer moves professionals whose paid period has ended to inactive.
// service.SubscriptionService implements it.
type Expirer interface {
	ExpireLapsed(ctx context.Context) (int64, error)
}

// SweepTask is the subscription status sweep. Reads already treat a lapsed
// professional as inactive; the sweep keeps the stored status in step so
// queries prefiltering on status stay small.
type SweepTask struct {
	expirer Expirer
}

// NewSweepTask creates the subscription status sweep.
func NewSweepTask(expirer Expirer) *SweepTask {
	return &SweepTask{expirer: expirer}
}

func (t *SweepTask) Name() string { return "subscription_sweep" }

func (t *SweepTask) Run(ctx context.Context) error {
	start := time.Now()
	expired, err := t.expirer.ExpireLapsed(ctx)
	if err != nil {
		metrics.SweepFailed()
		return err
	}
	metrics.SweepCompleted(expired, time.Since(start))
	return nil
}
