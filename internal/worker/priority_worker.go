package worker

import (
	"context"
	"errors"
	"fmt"
	"tasklist/internal/logger"
	"tasklist/internal/models/task"
	"tasklist/internal/service"
	"time"

	"go.uber.org/zap"
)

const DefaultInterval = time.Minute

type PriorityService interface {
	Tasks(ctx context.Context) ([]task.Task, error)
	RefreshPriority(ctx context.Context, id string) (bool, error)
}

// PriorityRefresher keeps the priority of unfinished tasks in step with the
// clock. It writes only through the service, never to storage directly.
type PriorityRefresher struct {
	svc      PriorityService
	interval time.Duration
}

type CheckResult struct {
	Checked int
	Changed int
	Failed  int
}

func NewPriorityRefresher(svc PriorityService, interval *time.Duration) *PriorityRefresher {
	var intervalToSet time.Duration
	if interval == nil || *interval <= 0 {
		intervalToSet = DefaultInterval
	} else {
		intervalToSet = *interval
	}

	return &PriorityRefresher{
		svc:      svc,
		interval: intervalToSet,
	}
}

func (w *PriorityRefresher) Interval() time.Duration {
	return w.interval
}

// Start checks once right away, then on every tick until ctx is done.
func (w *PriorityRefresher) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Worker: Priority refresher started", zap.Duration("interval", w.interval))
	w.Check(ctx)

	for {
		select {
		case <-ticker.C:
			logger.Debug("Worker: Priority check", zap.Time("started_at", time.Now()))
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Priority refresher stopping")
			return
		}
	}
}

// Check re-derives the priority of every live task with a deadline. A failure
// on one task is logged and the rest are still checked.
func (w *PriorityRefresher) Check(ctx context.Context) CheckResult {
	start := time.Now()
	result := CheckResult{}

	tasks, err := w.getLiveTasks(ctx)
	if err != nil {
		logger.Warn("Worker: Failed to read tasks", zap.Error(err))
		return result
	}

	for _, t := range tasks {
		if ctx.Err() != nil {
			break
		}
		result.Checked++

		changed, err := w.svc.RefreshPriority(ctx, t.ID)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				// purged since the read
				continue
			}
			logger.Warn("Worker: Failed to refresh task priority",
				zap.String("task_id", t.ID),
				zap.Error(err))
			result.Failed++
			continue
		}
		if changed {
			result.Changed++
		}
	}

	logger.Debug(
		"Worker: Priority check finished",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", result.Checked),
		zap.Int("changed", result.Changed),
		zap.Int("failed", result.Failed),
	)
	return result
}

func (w *PriorityRefresher) getLiveTasks(ctx context.Context) ([]task.Task, error) {
	all, err := w.svc.Tasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("get live tasks: %w", err)
	}

	live := make([]task.Task, 0, len(all))
	for _, t := range all {
		if t.Live() && !t.Deadline.IsZero() {
			live = append(live, t)
		}
	}
	return live, nil
}
