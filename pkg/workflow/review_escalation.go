package workflow

import (
	"time"

	"creatorplane/pkg/workflow/activities"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// EscalationRequest starts a ReviewEscalation run for one video stuck in
// revision_requested.
type EscalationRequest struct {
	TenantID    string        `json:"tenant_id"`
	VideoID     string        `json:"video_id"`
	RequestedAt time.Time     `json:"requested_at"`
	After       time.Duration `json:"after"`
}

// ReviewEscalation waits out the escalation window and then re-notifies the
// creator when they still have not resubmitted. The activity is a no-op when
// the video already left revision_requested.
func ReviewEscalation(ctx workflow.Context, req EscalationRequest) error {
	if req.After <= 0 {
		req.After = 72 * time.Hour
	}

	if err := workflow.Sleep(ctx, req.After); err != nil {
		return err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    3,
		},
	}

	ctx = workflow.WithActivityOptions(ctx, ao)

	return workflow.ExecuteActivity(ctx, activities.EscalateStaleRevision, req).Get(ctx, nil)
}
