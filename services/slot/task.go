package slot

import (
	"context"
	"encoding/json"
	"fmt"

	"creatorplane/pkg/task"
	"creatorplane/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var TaskModule = fx.Module("task.slot",
	fx.Provide(NewTask),
)

type Task struct {
	svc   *Service
	queue task.Enqueuer
}

type TaskParams struct {
	fx.In

	Service *Service
	Queue   task.Enqueuer
}

func NewTask(p TaskParams) *Task {
	return &Task{
		svc:   p.Service,
		queue: p.Queue,
	}
}

type ExpiryRunPayload struct {
	TenantID string `json:"tenant_id"`
}

// EnqueueAllTenantsExpiryRuns fans one expiry task out per tenant so a slow
// tenant never blocks the rest of the sweep.
func (s *Task) EnqueueAllTenantsExpiryRuns(ctx context.Context) error {
	tenants, err := s.svc.TenantIDs(ctx)
	if err != nil {
		return err
	}

	for _, tenantID := range tenants {
		b, err := json.Marshal(ExpiryRunPayload{TenantID: tenantID})
		if err != nil {
			return err
		}

		if _, err := s.queue.Enqueue(
			asynq.NewTask(taskname.SlotExpiryRun, b),
			asynq.Queue("low"),
		); err != nil {
			zap.L().Error("failed to enqueue expiry run",
				zap.Error(err), zap.String("tenant_id", tenantID))
			return err
		}
	}

	zap.L().Info("enqueued slot expiry runs", zap.Int("tenants", len(tenants)))
	return nil
}

func (s *Task) HandleExpiryRun(ctx context.Context, t *asynq.Task) error {
	var payload ExpiryRunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	expired, err := s.svc.ExpireSlots(ctx, payload.TenantID)
	if err != nil {
		zap.L().Error("slot expiry run failed",
			zap.Error(err), zap.String("tenant_id", payload.TenantID))
		return err
	}

	zap.L().Info("slot expiry run finished",
		zap.String("tenant_id", payload.TenantID),
		zap.Int("expired", expired),
	)
	return nil
}
