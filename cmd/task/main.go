package main

import (
	"context"

	"github.com/hibiken/asynq"
	"go.temporal.io/sdk/activity"
	temporalclient "go.temporal.io/sdk/client"
	temporalworker "go.temporal.io/sdk/worker"
	temporalworkflow "go.temporal.io/sdk/workflow"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"creatorplane/pkg/config"
	"creatorplane/pkg/db"
	"creatorplane/pkg/gen"
	"creatorplane/pkg/logger"
	"creatorplane/pkg/minio"
	"creatorplane/pkg/redis"
	"creatorplane/pkg/sequence"
	"creatorplane/pkg/task"
	"creatorplane/pkg/taskname"
	"creatorplane/pkg/workflow"
	"creatorplane/pkg/workflow/activities"
	"creatorplane/services/campaign"
	"creatorplane/services/slot"
	"creatorplane/services/submission"
	"creatorplane/services/video"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		db.Module,
		fx.Invoke(db.RegisterConnectionPool),
		redis.Module,
		sequence.Module,
		task.Client,
		task.Server,
		minio.Client,
		workflow.ProvideClient,
		gen.Module,
		campaign.Module,
		slot.Module,
		slot.TaskModule,
		slot.SchedulerModule,
		video.TaskModule,
		submission.TaskModule,
		fx.Invoke(
			registerHandlers,
			runReviewWorker,
		),
		fxLogger,
	)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})


type handlerParams struct {
	fx.In

	Mux         *asynq.ServeMux
	Videos      *video.Task
	Submissions *submission.Task
	Slots       *slot.Task
}

func registerHandlers(p handlerParams) {
	p.Mux.HandleFunc(taskname.VideoReviewNotify, p.Videos.HandleReviewNotify)
	p.Mux.HandleFunc(taskname.VideoProbe, p.Submissions.HandleProbe)
	p.Mux.HandleFunc(taskname.SlotExpiryRun, p.Slots.HandleExpiryRun)
}

// runReviewWorker hosts the review escalation workflow on the shared
// Temporal task queue.
func runReviewWorker(lc fx.Lifecycle, c temporalclient.Client, videos *video.Task) {
	w := temporalworker.New(c, workflow.REVIEW_TASK_QUEUE.String(), temporalworker.Options{})

	w.RegisterWorkflowWithOptions(workflow.ReviewEscalation, temporalworkflow.RegisterOptions{
		Name: workflow.WorkflowReviewEscalation,
	})
	w.RegisterActivityWithOptions(videos.EscalateStaleRevision, activity.RegisterOptions{
		Name: activities.EscalateStaleRevision,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return w.Start()
		},
		OnStop: func(ctx context.Context) error {
			w.Stop()
			return nil
		},
	})
}
