package video

import (
	"context"
	"encoding/json"
	"fmt"

	"creatorplane/pkg/repository"
	"creatorplane/pkg/workflow"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var TaskModule = fx.Module("task.video",
	fx.Provide(NewTask),
)

type Task struct {
	db   *gorm.DB
	node *snowflake.Node

	videos        repository.Repository[Video]
	notifications repository.Repository[Notification]
}

type TaskParams struct {
	fx.In

	DB   *gorm.DB
	Node *snowflake.Node
}

func NewTask(p TaskParams) *Task {
	return &Task{
		db:            p.DB,
		node:          p.Node,
		videos:        repository.ProvideStore[Video](p.DB),
		notifications: repository.ProvideStore[Notification](p.DB),
	}
}

// recipientsFor resolves who hears about a transition. The creator learns
// about anything requiring their action, the client about drafts entering
// their queue, the admin team about client verdicts.
func recipientsFor(t Transition, v *Video) []Notification {
	var out []Notification

	add := func(role, id string) {
		out = append(out, Notification{
			TenantID:      v.TenantID,
			VideoID:       v.VideoID,
			RecipientID:   id,
			RecipientRole: role,
			Transition:    t.String(),
			Status:        string(v.Status),
			Notes:         v.LastReviewNotes,
		})
	}

	switch t {
	case TransitionAdminApprove:
		add("client", "")
	case TransitionAdminRequestRevision, TransitionClientRequestRevision:
		add("creator", v.CreatorID)
	case TransitionClientApprove:
		add("admin", "")
	case TransitionFinalSignOff:
		add("creator", v.CreatorID)
	case TransitionSubmit, TransitionResubmit:
		add("admin", "")
	case TransitionPublish:
		add("admin", "")
		add("client", "")
	}

	return out
}

func (s *Task) HandleReviewNotify(ctx context.Context, t *asynq.Task) error {
	var payload ReviewNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	zapLog := zap.L().With(
		zap.String("task_type", t.Type()),
		zap.String("tenant_id", payload.TenantID),
		zap.String("video_id", payload.VideoID),
		zap.String("transition", payload.Transition),
	)

	v, err := s.videos.FindOne(ctx, &Video{VideoID: payload.VideoID, TenantID: payload.TenantID})
	if err != nil {
		zapLog.Error("failed to load video", zap.Error(err))
		return err
	}
	if v == nil {
		zapLog.Warn("video no longer exists, dropping notification")
		return nil
	}

	rows := recipientsFor(Transition(payload.Transition), v)
	for i := range rows {
		rows[i].ID = s.node.Generate().String()
		rows[i].Notes = payload.Notes
	}

	if err := s.notifications.BatchCreate(ctx, toPointers(rows)); err != nil {
		zapLog.Error("failed to write notifications", zap.Error(err))
		return err
	}

	zapLog.Info("review notifications written", zap.Int("recipients", len(rows)))
	return nil
}

// EscalateStaleRevision is the ReviewEscalation workflow activity. It
// re-notifies the creator when the video is still waiting on a revision.
func (s *Task) EscalateStaleRevision(ctx context.Context, req workflow.EscalationRequest) error {
	v, err := s.videos.FindOne(ctx, &Video{VideoID: req.VideoID, TenantID: req.TenantID})
	if err != nil {
		return err
	}
	if v == nil || v.Status != StatusRevisionRequested {
		return nil
	}

	return s.notifications.Create(ctx, &Notification{
		ID:            s.node.Generate().String(),
		TenantID:      v.TenantID,
		VideoID:       v.VideoID,
		RecipientID:   v.CreatorID,
		RecipientRole: "creator",
		Transition:    "revision_reminder",
		Status:        string(v.Status),
		Notes:         v.LastReviewNotes,
	})
}

func toPointers(rows []Notification) []*Notification {
	out := make([]*Notification, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out
}
