package video

import (
	"context"
	"encoding/json"
	"fmt"

	"creatorplane/pkg/authz"
	"creatorplane/pkg/config"
	"creatorplane/pkg/errutil"
	"creatorplane/pkg/events"
	"creatorplane/pkg/featureflags"
	"creatorplane/pkg/repository"
	"creatorplane/pkg/task"
	"creatorplane/pkg/taskname"
	"creatorplane/pkg/workflow"

	"github.com/bwmarrin/snowflake"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/trace"
	temporalclient "go.temporal.io/sdk/client"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ========================================================
// Service Definition
// ========================================================

type Service struct {
	db     *gorm.DB
	cfg    *config.Config
	node   *snowflake.Node
	guard  authz.Guard
	queue  task.Enqueuer
	events events.Publisher
	flags  featureflags.FeatureFlag
	wf     temporalclient.Client

	videos        repository.Repository[Video]
	notifications repository.Repository[Notification]
}

type ServiceParams struct {
	fx.In

	DB       *gorm.DB
	Config   *config.Config
	Node     *snowflake.Node
	Guard    authz.Guard
	Enqueuer task.Enqueuer
	Events   events.Publisher
	Flags    featureflags.FeatureFlag
	Temporal temporalclient.Client `optional:"true"`
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:            p.DB,
		cfg:           p.Config,
		node:          p.Node,
		guard:         p.Guard,
		queue:         p.Enqueuer,
		events:        p.Events,
		flags:         p.Flags,
		wf:            p.Temporal,
		videos:        repository.ProvideStore[Video](p.DB),
		notifications: repository.ProvideStore[Notification](p.DB),
	}
}

// ========================================================
// Queries
// ========================================================

func (s *Service) Get(ctx context.Context, tenantID, videoID string) (*Video, error) {
	v, err := s.videos.FindOne(ctx, &Video{VideoID: videoID, TenantID: tenantID})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errutil.NotFound(fmt.Sprintf("video %s not found", videoID), nil)
	}
	return v, nil
}

// ========================================================
// Review transitions
// ========================================================

type ReviewRequest struct {
	TenantID   string
	VideoID    string
	Transition Transition
	Actor      Actor
	Notes      string
}

// Review runs one guarded transition of the state machine. The wrong role,
// the wrong current state, or a lost version race all leave the video
// untouched.
func (s *Service) Review(ctx context.Context, req ReviewRequest) (*Video, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
		zap.String("video_id", req.VideoID),
		zap.String("transition", req.Transition.String()),
	)

	rule, ok := req.Transition.Rule()
	if !ok || rule.Internal {
		return nil, errutil.BadRequest(fmt.Sprintf("unknown transition %s", req.Transition), nil)
	}

	if !s.guard.Allow(req.Actor.Role, req.Transition.String()) {
		zapLog.Warn("transition blocked by role guard", zap.String("role", req.Actor.Role))
		return nil, ErrUnauthorizedTransition(req.Actor.Role, req.Transition)
	}

	if rule.NotesRequired && req.Notes == "" {
		return nil, ErrNotesRequired(req.Transition)
	}

	v, err := s.Get(ctx, req.TenantID, req.VideoID)
	if err != nil {
		return nil, err
	}

	if v.Status != rule.From {
		return nil, ErrInvalidState(v.Status, req.Transition)
	}

	updates := map[string]any{
		"status":  rule.To,
		"version": v.Version + 1,
	}
	if req.Notes != "" {
		updates["last_review_notes"] = req.Notes
	}

	if err := s.applyTransition(ctx, s.db, v, updates); err != nil {
		zapLog.Warn("failed to apply transition", zap.Error(err))
		return nil, err
	}
	v.Status = rule.To
	if req.Notes != "" {
		v.LastReviewNotes = req.Notes
	}

	zapLog.Info("video transitioned", zap.String("status", string(v.Status)))
	s.NotifyTransition(ctx, v, req.Transition, req.Notes)

	if rule.To == StatusRevisionRequested {
		s.startEscalation(ctx, v)
	}

	if req.Transition == TransitionClientApprove && s.autoFinalApproval(ctx, req.TenantID) {
		return s.finalSignOff(ctx, v)
	}

	return v, nil
}

// finalSignOff is the automatic client_approved -> ready_to_post hop used
// when the tenant policy skips the manual admin sign-off.
func (s *Service) finalSignOff(ctx context.Context, v *Video) (*Video, error) {
	rule, _ := TransitionFinalSignOff.Rule()

	if err := s.applyTransition(ctx, s.db, v, map[string]any{
		"status":  rule.To,
		"version": v.Version + 1,
	}); err != nil {
		return nil, err
	}
	v.Status = rule.To

	s.NotifyTransition(ctx, v, TransitionFinalSignOff, "")
	return v, nil
}

// Resubmit moves a video out of revision_requested inside the caller's
// transaction. Creating the revision submission and this transition commit
// or roll back together.
func (s *Service) Resubmit(ctx context.Context, tx *gorm.DB, v *Video) error {
	if v.Status != StatusRevisionRequested {
		return ErrInvalidState(v.Status, TransitionResubmit)
	}

	if err := s.applyTransition(ctx, tx, v, map[string]any{
		"status":         StatusPendingAdminReview,
		"version":        v.Version + 1,
		"revision_count": v.RevisionCount + 1,
	}); err != nil {
		return err
	}

	v.Status = StatusPendingAdminReview
	v.RevisionCount++
	return nil
}

// SubmitLiveLink closes the loop: the owning creator posts the public URL
// once the content is live on the platform.
func (s *Service) SubmitLiveLink(ctx context.Context, tenantID, videoID, creatorID, url string) (*Video, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
		zap.String("video_id", videoID),
	)

	if !s.guard.Allow("creator", TransitionPublish.String()) {
		return nil, ErrUnauthorizedTransition("creator", TransitionPublish)
	}

	v, err := s.Get(ctx, tenantID, videoID)
	if err != nil {
		return nil, err
	}

	if v.CreatorID != creatorID {
		return nil, errutil.Forbidden("only the owning creator may submit the live link", nil)
	}

	if v.Status != StatusReadyToPost {
		return nil, ErrInvalidState(v.Status, TransitionPublish)
	}

	if !ValidLiveURL(v.Platform, url) {
		return nil, ErrInvalidURLFormat(string(v.Platform), url)
	}

	if err := s.applyTransition(ctx, s.db, v, map[string]any{
		"status":   StatusLive,
		"live_url": url,
		"version":  v.Version + 1,
	}); err != nil {
		zapLog.Warn("failed to submit live link", zap.Error(err))
		return nil, err
	}

	v.Status = StatusLive
	v.LiveURL = url

	zapLog.Info("video is live", zap.String("live_url", url))
	s.NotifyTransition(ctx, v, TransitionPublish, "")
	return v, nil
}

// CreateDraft inserts the initial video row inside the caller's transaction.
func (s *Service) CreateDraft(ctx context.Context, tx *gorm.DB, v *Video) error {
	if v.VideoID == "" {
		v.VideoID = s.node.Generate().String()
	}
	if v.Status == "" {
		v.Status = StatusPendingAdminReview
	}
	if v.Version == 0 {
		v.Version = 1
	}

	return s.videos.WithTrx(tx).Create(ctx, v)
}

// applyTransition is the single writer for video status. The version
// predicate makes concurrent reviewers race for at most one winner.
func (s *Service) applyTransition(ctx context.Context, db *gorm.DB, v *Video, updates map[string]any) error {
	res := db.WithContext(ctx).Model(&Video{}).
		Where("video_id = ? AND version = ?", v.VideoID, v.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConcurrentModification(v.VideoID)
	}

	v.Version++
	return nil
}

// ========================================================
// Side effects
// ========================================================

type ReviewNotifyPayload struct {
	TenantID   string `json:"tenant_id"`
	VideoID    string `json:"video_id"`
	Transition string `json:"transition"`
	Status     string `json:"status"`
	Notes      string `json:"notes,omitempty"`
}

const EventVideoStatusChanged = "video.status.changed"

// NotifyTransition fans out the post-transition side effects: the review
// notification task and the status-changed event. Callers running inside a
// transaction call this after commit.
func (s *Service) NotifyTransition(ctx context.Context, v *Video, t Transition, notes string) {
	payload := ReviewNotifyPayload{
		TenantID:   v.TenantID,
		VideoID:    v.VideoID,
		Transition: t.String(),
		Status:     string(v.Status),
		Notes:      notes,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("failed to marshal review notify payload", zap.Error(err))
		return
	}

	if s.queue != nil {
		if _, err := s.queue.Enqueue(asynq.NewTask(taskname.VideoReviewNotify, b)); err != nil {
			zap.L().Error("failed to enqueue review notification", zap.Error(err), zap.String("video_id", v.VideoID))
		}
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, EventVideoStatusChanged, v.TenantID, payload); err != nil {
			zap.L().Error("failed to publish status changed event", zap.Error(err), zap.String("video_id", v.VideoID))
		}
	}
}

func (s *Service) startEscalation(ctx context.Context, v *Video) {
	if s.wf == nil || s.cfg.Review.EscalationAfter <= 0 {
		return
	}

	_, err := s.wf.ExecuteWorkflow(ctx, temporalclient.StartWorkflowOptions{
		ID:        fmt.Sprintf("review-escalation-%s-%d", v.VideoID, v.Version),
		TaskQueue: workflow.REVIEW_TASK_QUEUE.String(),
	}, workflow.WorkflowReviewEscalation, workflow.EscalationRequest{
		TenantID:    v.TenantID,
		VideoID:     v.VideoID,
		RequestedAt: v.UpdatedAt,
		After:       s.cfg.Review.EscalationAfter,
	})
	if err != nil {
		zap.L().Warn("failed to start review escalation workflow", zap.Error(err), zap.String("video_id", v.VideoID))
	}
}

func (s *Service) autoFinalApproval(ctx context.Context, tenantID string) bool {
	if s.cfg.Review.AutoFinalApproval {
		return true
	}
	if s.flags == nil {
		return false
	}
	return s.flags.IsEnabled(ctx, tenantID, "auto-final-approval")
}
