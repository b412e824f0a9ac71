package slot

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Scheduler enqueues the per-tenant slot expiry sweep once a day.
type Scheduler struct {
	task   *Task
	cancel context.CancelFunc
}

func NewScheduler(task *Task) *Scheduler {
	return &Scheduler{task: task}
}

// StartScheduler is invoked by FX on service start.
func StartScheduler(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			runCtx, cancel := context.WithCancel(context.Background())
			s.cancel = cancel
			go s.run(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if s.cancel != nil {
				s.cancel()
			}
			return nil
		},
	})
}

func (s *Scheduler) run(ctx context.Context) {
	zap.L().Info("[Scheduler] started slot expiry scheduler")

	for {
		now := time.Now()
		next := nextRunTime(now, 1, 0)

		sleepDuration := next.Sub(now)
		zap.L().Info("[Scheduler] next run scheduled",
			zap.Time("next_run", next),
			zap.Duration("sleep_for", sleepDuration),
		)
		select {
		case <-time.After(sleepDuration):
			s.runDaily(ctx)
		case <-ctx.Done():
			zap.L().Warn("[Scheduler] stopped")
			return
		}
	}
}

func (s *Scheduler) runDaily(ctx context.Context) {
	start := time.Now()
	zap.L().Info("[Scheduler] Running daily slot expiry enqueue job")

	if err := s.task.EnqueueAllTenantsExpiryRuns(ctx); err != nil {
		zap.L().Error("[Scheduler] failed enqueue all tenants", zap.Error(err))
		return
	}

	zap.L().Info("[Scheduler] Finished enqueue all tenants",
		zap.Duration("duration", time.Since(start)),
	)
}

func nextRunTime(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if now.After(next) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
