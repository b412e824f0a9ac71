package video

import (
	"context"
	"encoding/json"
	"testing"

	"creatorplane/pkg/taskname"
	"creatorplane/pkg/workflow"
	"creatorplane/services/testutil"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

func newTestTask(t *testing.T) *Task {
	t.Helper()

	db := testutil.NewTestDB(t, &Video{}, &Notification{})

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewTask(TaskParams{DB: db, Node: node})
}

func seedTaskVideo(t *testing.T, task *Task, status Status) *Video {
	t.Helper()

	v := &Video{
		VideoID:   task.node.Generate().String(),
		TenantID:  "tenant-1",
		SlotID:    "slot-1",
		CreatorID: "creator-1",
		Platform:  PlatformTikTok,
		Status:    status,
		Version:   1,
	}
	require.NoError(t, task.db.Create(v).Error)
	return v
}

func notifyTask(t *testing.T, v *Video, tr Transition, notes string) *asynq.Task {
	t.Helper()

	b, err := json.Marshal(ReviewNotifyPayload{
		TenantID:   v.TenantID,
		VideoID:    v.VideoID,
		Transition: tr.String(),
		Status:     string(v.Status),
		Notes:      notes,
	})
	require.NoError(t, err)
	return asynq.NewTask(taskname.VideoReviewNotify, b)
}

func TestHandleReviewNotify(t *testing.T) {
	task := newTestTask(t)
	ctx := context.Background()

	v := seedTaskVideo(t, task, StatusRevisionRequested)

	err := task.HandleReviewNotify(ctx, notifyTask(t, v, TransitionAdminRequestRevision, "fix the hook"))
	require.NoError(t, err)

	var rows []Notification
	require.NoError(t, task.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, "creator", rows[0].RecipientRole)
	require.Equal(t, v.CreatorID, rows[0].RecipientID)
	require.Equal(t, "fix the hook", rows[0].Notes)
}

func TestHandleReviewNotifyPublishFansOut(t *testing.T) {
	task := newTestTask(t)

	v := seedTaskVideo(t, task, StatusLive)

	err := task.HandleReviewNotify(context.Background(), notifyTask(t, v, TransitionPublish, ""))
	require.NoError(t, err)

	var rows []Notification
	require.NoError(t, task.db.Find(&rows).Error)
	require.Len(t, rows, 2)
}

func TestHandleReviewNotifyMissingVideo(t *testing.T) {
	task := newTestTask(t)

	v := &Video{VideoID: "gone", TenantID: "tenant-1", Status: StatusLive}
	err := task.HandleReviewNotify(context.Background(), notifyTask(t, v, TransitionPublish, ""))
	require.NoError(t, err)

	var count int64
	require.NoError(t, task.db.Model(&Notification{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestEscalateStaleRevision(t *testing.T) {
	task := newTestTask(t)
	ctx := context.Background()

	v := seedTaskVideo(t, task, StatusRevisionRequested)

	require.NoError(t, task.EscalateStaleRevision(ctx, workflow.EscalationRequest{
		TenantID: v.TenantID,
		VideoID:  v.VideoID,
	}))

	var rows []Notification
	require.NoError(t, task.db.Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, "revision_reminder", rows[0].Transition)
}

func TestEscalateStaleRevisionNoOpAfterResubmit(t *testing.T) {
	task := newTestTask(t)
	ctx := context.Background()

	v := seedTaskVideo(t, task, StatusPendingAdminReview)

	require.NoError(t, task.EscalateStaleRevision(ctx, workflow.EscalationRequest{
		TenantID: v.TenantID,
		VideoID:  v.VideoID,
	}))

	var count int64
	require.NoError(t, task.db.Model(&Notification{}).Count(&count).Error)
	require.Zero(t, count)
}
