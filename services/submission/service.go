package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"creatorplane/pkg/config"
	"creatorplane/pkg/db/option"
	"creatorplane/pkg/errutil"
	"creatorplane/pkg/minio"
	"creatorplane/pkg/repository"
	"creatorplane/pkg/sequence"
	"creatorplane/pkg/task"
	"creatorplane/pkg/taskname"
	"creatorplane/services/slot"
	"creatorplane/services/video"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultURLExpiry = 15 * time.Minute

// ========================================================
// Service Definition
// ========================================================

type Service struct {
	db      *gorm.DB
	cfg     *config.Config
	node    *snowflake.Node
	seq     sequence.Generator
	storage minio.Storage
	queue   task.Enqueuer
	builder *Builder
	slots   *slot.Service
	videos  *video.Service

	submissions repository.Repository[Submission]
}

type ServiceParams struct {
	fx.In

	DB      *gorm.DB
	Config  *config.Config
	Node    *snowflake.Node
	Seq     sequence.Generator
	Storage minio.Storage
	Queue   task.Enqueuer `optional:"true"`
	Slots   *slot.Service
	Videos  *video.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:          p.DB,
		cfg:         p.Config,
		node:        p.Node,
		seq:         p.Seq,
		storage:     p.Storage,
		queue:       p.Queue,
		builder:     NewBuilder(p.Config, p.Storage),
		slots:       p.Slots,
		videos:      p.Videos,
		submissions: repository.ProvideStore[Submission](p.DB),
	}
}

// ========================================================
// Upload URL
// ========================================================

type UploadTarget struct {
	ObjectKey string        `json:"object_key"`
	UploadURL string        `json:"upload_url"`
	ExpiresIn time.Duration `json:"expires_in"`
}

// GenerateUploadURL hands the creator a presigned PUT target. Nothing is
// committed until a draft or revision call validates the uploaded object.
func (s *Service) GenerateUploadURL(ctx context.Context, tenantID, creatorID, filename string) (*UploadTarget, error) {
	ext := path.Ext(filename)
	if ext == "" {
		ext = ".mp4"
	}

	prefix := s.cfg.Upload.ObjectPrefix
	if prefix == "" {
		prefix = "uploads"
	}

	key := fmt.Sprintf("%s/%s/%s/%s%s", prefix, tenantID, creatorID, s.node.Generate().String(), ext)

	expiry := s.cfg.Upload.URLExpiry
	if expiry <= 0 {
		expiry = defaultURLExpiry
	}

	u, err := s.storage.PresignPut(ctx, key, expiry)
	if err != nil {
		zap.L().Error("failed to presign upload URL", zap.Error(err), zap.String("tenant_id", tenantID))
		return nil, err
	}

	return &UploadTarget{ObjectKey: key, UploadURL: u, ExpiresIn: expiry}, nil
}

// ========================================================
// Draft
// ========================================================

// SubmitDraft claims the slot for the creator: the video enters review and
// the first history entry is written, atomically.
func (s *Service) SubmitDraft(ctx context.Context, tenantID, slotID, creatorID string, p Payload) (*video.Video, *Submission, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
		zap.String("tenant_id", tenantID),
		zap.String("slot_id", slotID),
		zap.String("creator_id", creatorID),
	)

	sl, err := s.slots.Get(ctx, tenantID, slotID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.slots.CanClaim(ctx, sl, creatorID); err != nil {
		zapLog.Info("slot claim rejected", zap.Error(err))
		return nil, nil, err
	}

	sub, err := s.builder.BuildDraft(ctx, p)
	if err != nil {
		return nil, nil, err
	}

	videoCode, err := s.seq.NextVideoCode(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	subCode, err := s.seq.NextSubmissionCode(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}

	v := video.Video{
		TenantID:   tenantID,
		CampaignID: sl.CampaignID,
		SlotID:     sl.SlotID,
		CreatorID:  creatorID,
		Code:       videoCode,
		Platform:   p.Platform,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.slots.RecheckClaim(ctx, tx, sl, creatorID); err != nil {
			return err
		}

		if err := s.videos.CreateDraft(ctx, tx, &v); err != nil {
			return err
		}

		sub.SubmissionID = s.node.Generate().String()
		sub.TenantID = tenantID
		sub.VideoID = v.VideoID
		sub.SlotID = sl.SlotID
		sub.CreatorID = creatorID
		sub.Code = subCode

		return s.submissions.WithTrx(tx).Create(ctx, sub)
	})
	if err != nil {
		zapLog.Error("failed to submit draft", zap.Error(err))
		return nil, nil, err
	}

	zapLog.Info("draft submitted",
		zap.String("video_id", v.VideoID),
		zap.String("submission_id", sub.SubmissionID),
	)

	s.videos.NotifyTransition(ctx, &v, video.TransitionSubmit, p.Notes)
	s.enqueueProbe(sub)

	return &v, sub, nil
}

// ========================================================
// Revision
// ========================================================

// SubmitRevision appends a revision to the video's history and moves it back
// into admin review. Only the owning creator may revise, and only while the
// video is waiting on a revision.
func (s *Service) SubmitRevision(ctx context.Context, tenantID, videoID, creatorID string, p Payload) (*video.Video, *Submission, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
		zap.String("tenant_id", tenantID),
		zap.String("video_id", videoID),
	)

	v, err := s.videos.Get(ctx, tenantID, videoID)
	if err != nil {
		return nil, nil, err
	}

	if v.CreatorID != creatorID {
		return nil, nil, errutil.Forbidden("only the owning creator may submit a revision", nil)
	}

	sub, err := s.builder.BuildRevision(ctx, v, p)
	if err != nil {
		return nil, nil, err
	}

	subCode, err := s.seq.NextSubmissionCode(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.videos.Resubmit(ctx, tx, v); err != nil {
			return err
		}

		sub.SubmissionID = s.node.Generate().String()
		sub.TenantID = tenantID
		sub.VideoID = v.VideoID
		sub.SlotID = v.SlotID
		sub.CreatorID = creatorID
		sub.Code = subCode

		return s.submissions.WithTrx(tx).Create(ctx, sub)
	})
	if err != nil {
		zapLog.Warn("failed to submit revision", zap.Error(err))
		return nil, nil, err
	}

	zapLog.Info("revision submitted",
		zap.String("submission_id", sub.SubmissionID),
		zap.Int("revision_count", v.RevisionCount),
	)

	s.videos.NotifyTransition(ctx, v, video.TransitionResubmit, p.Notes)
	s.enqueueProbe(sub)

	return v, sub, nil
}

// ========================================================
// History
// ========================================================

// History lists a video's submissions oldest first, the order reviewers read
// a revision thread in.
func (s *Service) History(ctx context.Context, tenantID, videoID string) ([]*Submission, error) {
	if _, err := s.videos.Get(ctx, tenantID, videoID); err != nil {
		return nil, err
	}

	return s.submissions.Find(ctx, &Submission{TenantID: tenantID, VideoID: videoID},
		option.WithSortBy(option.QuerySortBy{
			SortBy:  "created_at",
			OrderBy: "asc",
			Allow:   map[string]bool{"created_at": true},
		}),
	)
}

// ========================================================
// Side effects
// ========================================================

type ProbePayload struct {
	TenantID     string `json:"tenant_id"`
	SubmissionID string `json:"submission_id"`
	FileRef      string `json:"file_ref"`
}

func (s *Service) enqueueProbe(sub *Submission) {
	if s.queue == nil || sub.PayloadType != PayloadFile {
		return
	}

	b, err := json.Marshal(ProbePayload{
		TenantID:     sub.TenantID,
		SubmissionID: sub.SubmissionID,
		FileRef:      sub.FileRef,
	})
	if err != nil {
		zap.L().Error("failed to marshal probe payload", zap.Error(err))
		return
	}

	if _, err := s.queue.Enqueue(asynq.NewTask(taskname.VideoProbe, b), asynq.Queue("low")); err != nil {
		zap.L().Error("failed to enqueue video probe",
			zap.Error(err), zap.String("submission_id", sub.SubmissionID))
	}
}
