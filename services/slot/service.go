package slot

import (
	"context"
	"fmt"
	"time"

	"creatorplane/pkg/config"
	"creatorplane/pkg/db/option"
	"creatorplane/pkg/errutil"
	"creatorplane/pkg/repository"
	"creatorplane/pkg/sequence"
	"creatorplane/services/campaign"
	"creatorplane/services/video"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	maxCreatorsFloor   = 2
	maxCreatorsCeiling = 20
)

// ========================================================
// Service Definition
// ========================================================

type Service struct {
	db        *gorm.DB
	cfg       *config.Config
	node      *snowflake.Node
	seq       sequence.Generator
	campaigns *campaign.Service

	slots repository.Repository[ScheduledSlot]
}

type ServiceParams struct {
	fx.In

	DB        *gorm.DB
	Config    *config.Config
	Node      *snowflake.Node
	Seq       sequence.Generator
	Campaigns *campaign.Service
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:        p.DB,
		cfg:       p.Config,
		node:      p.Node,
		seq:       p.Seq,
		campaigns: p.Campaigns,
		slots:     repository.ProvideStore[ScheduledSlot](p.DB),
	}
}

// ========================================================
// Slot CRUD
// ========================================================

type CreateSlotRequest struct {
	CampaignID      string         `json:"campaign_id" binding:"required"`
	ScheduledDate   time.Time      `json:"scheduled_date" binding:"required"`
	ScheduledTime   string         `json:"scheduled_time"`
	AssignmentType  AssignmentType `json:"assignment_type" binding:"required"`
	TargetCreatorID string         `json:"target_creator_id"`
	MaxCreators     int            `json:"max_creators"`
}

func (r CreateSlotRequest) validate() error {
	if !r.AssignmentType.Valid() {
		return errutil.BadRequest(
			fmt.Sprintf("unknown assignment type %s", r.AssignmentType), nil)
	}

	switch r.AssignmentType {
	case AssignSpecificCreator:
		if r.TargetCreatorID == "" {
			return errutil.ValidationFailed("target_creator_id is required for specific_creator slots", nil,
				errutil.WithDetails(errutil.Detail{Field: "target_creator_id", Message: "required"}))
		}
		if r.MaxCreators != 0 {
			return errutil.ValidationFailed("max_creators is not allowed for specific_creator slots", nil,
				errutil.WithDetails(errutil.Detail{Field: "max_creators", Message: "not allowed"}))
		}
	case AssignAnyCreator:
		if r.TargetCreatorID != "" {
			return errutil.ValidationFailed("target_creator_id is not allowed for any_creator slots", nil,
				errutil.WithDetails(errutil.Detail{Field: "target_creator_id", Message: "not allowed"}))
		}
		if r.MaxCreators != 0 {
			return errutil.ValidationFailed("max_creators is not allowed for any_creator slots", nil,
				errutil.WithDetails(errutil.Detail{Field: "max_creators", Message: "not allowed"}))
		}
	case AssignMultipleCreators:
		if r.TargetCreatorID != "" {
			return errutil.ValidationFailed("target_creator_id is not allowed for multiple_creators slots", nil,
				errutil.WithDetails(errutil.Detail{Field: "target_creator_id", Message: "not allowed"}))
		}
		if r.MaxCreators < maxCreatorsFloor || r.MaxCreators > maxCreatorsCeiling {
			return errutil.ValidationFailed(
				fmt.Sprintf("max_creators must be between %d and %d", maxCreatorsFloor, maxCreatorsCeiling), nil,
				errutil.WithDetails(errutil.Detail{Field: "max_creators", Message: "out of range"}))
		}
	}

	if r.ScheduledTime != "" {
		if _, err := time.Parse("15:04", r.ScheduledTime); err != nil {
			return errutil.ValidationFailed("scheduled_time must be HH:MM", err,
				errutil.WithDetails(errutil.Detail{Field: "scheduled_time", Message: "must be HH:MM"}))
		}
	}

	return nil
}

func (s *Service) Create(ctx context.Context, tenantID string, req CreateSlotRequest) (*ScheduledSlot, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
		zap.String("tenant_id", tenantID),
	)

	if err := req.validate(); err != nil {
		return nil, err
	}

	if _, err := s.campaigns.Get(ctx, tenantID, req.CampaignID); err != nil {
		return nil, err
	}

	code, err := s.seq.NextSlotCode(ctx, tenantID)
	if err != nil {
		zapLog.Error("failed to generate slot code", zap.Error(err))
		return nil, err
	}

	sl := ScheduledSlot{
		SlotID:          s.node.Generate().String(),
		TenantID:        tenantID,
		CampaignID:      req.CampaignID,
		Code:            code,
		ScheduledDate:   req.ScheduledDate,
		ScheduledTime:   req.ScheduledTime,
		AssignmentType:  req.AssignmentType,
		TargetCreatorID: req.TargetCreatorID,
		MaxCreators:     req.MaxCreators,
		Status:          StatusOpen,
	}

	if err := s.slots.Create(ctx, &sl); err != nil {
		zapLog.Error("failed to create slot", zap.Error(err))
		return nil, err
	}

	return &sl, nil
}

func (s *Service) Get(ctx context.Context, tenantID, slotID string) (*ScheduledSlot, error) {
	sl, err := s.slots.FindOne(ctx, &ScheduledSlot{SlotID: slotID, TenantID: tenantID})
	if err != nil {
		return nil, err
	}
	if sl == nil {
		return nil, errutil.NotFound(fmt.Sprintf("slot %s not found", slotID), nil)
	}
	return sl, nil
}

func (s *Service) List(ctx context.Context, tenantID, campaignID string) ([]*ScheduledSlot, error) {
	filter := &ScheduledSlot{TenantID: tenantID}
	if campaignID != "" {
		filter.CampaignID = campaignID
	}

	return s.slots.Find(ctx, filter,
		option.WithSortBy(option.QuerySortBy{
			SortBy:  "scheduled_date",
			OrderBy: "asc",
			Allow:   map[string]bool{"scheduled_date": true, "created_at": true},
		}),
	)
}

// ========================================================
// Expiry Sweep
// ========================================================

// ExpireSlots marks OPEN slots past the retention window EXPIRED when no
// video was ever submitted against them. A zero window disables the sweep.
func (s *Service) ExpireSlots(ctx context.Context, tenantID string) (int, error) {
	window := s.cfg.Slot.ExpiryAfter
	if window <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().Add(-window)

	var stale []*ScheduledSlot
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ? AND scheduled_date < ?", tenantID, StatusOpen, cutoff).
		Find(&stale).Error
	if err != nil {
		return 0, err
	}

	if len(stale) == 0 {
		return 0, nil
	}

	var expired int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	ids := make(chan string, len(stale))
	for _, sl := range stale {
		sl := sl
		g.Go(func() error {
			var count int64
			if err := s.db.WithContext(gctx).Model(&video.Video{}).
				Where("tenant_id = ? AND slot_id = ?", sl.TenantID, sl.SlotID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				ids <- sl.SlotID
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	close(ids)

	for id := range ids {
		res := s.db.WithContext(ctx).Model(&ScheduledSlot{}).
			Where("slot_id = ? AND status = ?", id, StatusOpen).
			Update("status", StatusExpired)
		if res.Error != nil {
			return int(expired), res.Error
		}
		expired += res.RowsAffected
	}

	if expired > 0 {
		zap.L().Info("expired stale slots",
			zap.String("tenant_id", tenantID),
			zap.Int64("count", expired),
		)
	}

	return int(expired), nil
}

// TenantIDs lists the tenants that own at least one slot, for the sweep
// scheduler fan-out.
func (s *Service) TenantIDs(ctx context.Context) ([]string, error) {
	var tenants []string
	err := s.db.WithContext(ctx).Model(&ScheduledSlot{}).
		Distinct().
		Pluck("tenant_id", &tenants).Error
	return tenants, err
}
