package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"creatorplane/pkg/ffmpeg"
	"creatorplane/pkg/minio"
	"creatorplane/pkg/repository"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var TaskModule = fx.Module("task.submission",
	fx.Provide(NewTask),
)

type Task struct {
	db      *gorm.DB
	storage minio.Storage

	submissions repository.Repository[Submission]
}

type TaskParams struct {
	fx.In

	DB      *gorm.DB
	Storage minio.Storage
}

func NewTask(p TaskParams) *Task {
	return &Task{
		db:          p.DB,
		storage:     p.Storage,
		submissions: repository.ProvideStore[Submission](p.DB),
	}
}

// HandleProbe resolves the dimensions of an uploaded file. ffprobe reads the
// object over a short-lived presigned URL, nothing is downloaded.
func (s *Task) HandleProbe(ctx context.Context, t *asynq.Task) error {
	var payload ProbePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	zapLog := zap.L().With(
		zap.String("task_type", t.Type()),
		zap.String("tenant_id", payload.TenantID),
		zap.String("submission_id", payload.SubmissionID),
	)

	sub, err := s.submissions.FindOne(ctx, &Submission{
		SubmissionID: payload.SubmissionID,
		TenantID:     payload.TenantID,
	})
	if err != nil {
		zapLog.Error("failed to load submission", zap.Error(err))
		return err
	}
	if sub == nil || sub.PayloadType != PayloadFile {
		zapLog.Warn("submission gone or not a file payload, dropping probe")
		return nil
	}

	u, err := s.storage.PresignGet(ctx, sub.FileRef, 10*time.Minute)
	if err != nil {
		zapLog.Error("failed to presign object for probing", zap.Error(err))
		return err
	}

	meta, err := ffmpeg.Probe(u)
	if err != nil {
		zapLog.Error("ffprobe failed", zap.Error(err))
		return err
	}

	err = s.db.WithContext(ctx).Model(&Submission{}).
		Where("submission_id = ?", sub.SubmissionID).
		Updates(map[string]any{"width": meta.Width, "height": meta.Height}).Error
	if err != nil {
		zapLog.Error("failed to store probe result", zap.Error(err))
		return err
	}

	zapLog.Info("probe finished",
		zap.Int("width", meta.Width),
		zap.Int("height", meta.Height),
		zap.String("codec", meta.Codec),
	)
	return nil
}
