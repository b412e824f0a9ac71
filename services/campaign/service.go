package campaign

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"creatorplane/pkg/celengine"
	"creatorplane/pkg/db/option"
	"creatorplane/pkg/db/pagination"
	"creatorplane/pkg/errutil"
	"creatorplane/pkg/repository"
	"creatorplane/pkg/sequence"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ========================================================
// Service Definition
// ========================================================

type Service struct {
	db   *gorm.DB
	node *snowflake.Node
	seq  sequence.Generator

	campaigns repository.Repository[Campaign]
	roster    repository.Repository[CampaignCreator]
}

type ServiceParams struct {
	fx.In

	DB   *gorm.DB
	Node *snowflake.Node
	Seq  sequence.Generator
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:        p.DB,
		node:      p.Node,
		seq:       p.Seq,
		campaigns: repository.ProvideStore[Campaign](p.DB),
		roster:    repository.ProvideStore[CampaignCreator](p.DB),
	}
}

// ========================================================
// Campaign CRUD
// ========================================================

type CreateCampaignRequest struct {
	Name                  string         `json:"name" binding:"required"`
	Description           string         `json:"description"`
	EligibilityExpression string         `json:"eligibility_expression"`
	StartAt               *time.Time     `json:"start_at"`
	EndAt                 *time.Time     `json:"end_at"`
	Metadata              datatypes.JSON `json:"metadata"`
}

func (s *Service) Create(ctx context.Context, tenantID string, req CreateCampaignRequest) (*Campaign, error) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	zapLog := zap.L().With(
		zap.String("trace_id", span.SpanContext().TraceID().String()),
		zap.String("span_id", span.SpanContext().SpanID().String()),
		zap.String("tenant_id", tenantID),
	)

	if req.EligibilityExpression != "" {
		if err := s.validateExpression(req.EligibilityExpression); err != nil {
			return nil, errutil.ValidationFailed("invalid eligibility expression", err)
		}
	}

	code, err := s.seq.NextCampaignCode(ctx, tenantID)
	if err != nil {
		zapLog.Error("failed to generate campaign code", zap.Error(err))
		return nil, err
	}

	c := Campaign{
		CampaignID:            s.node.Generate().String(),
		TenantID:              tenantID,
		Code:                  code,
		Name:                  req.Name,
		Slug:                  slug.Make(req.Name),
		Description:           req.Description,
		Status:                StatusDraft,
		EligibilityExpression: req.EligibilityExpression,
		StartAt:               req.StartAt,
		EndAt:                 req.EndAt,
		Metadata:              req.Metadata,
	}

	if err := s.campaigns.Create(ctx, &c); err != nil {
		zapLog.Error("failed to create campaign", zap.Error(err))
		return nil, err
	}

	return &c, nil
}

func (s *Service) Get(ctx context.Context, tenantID, campaignID string) (*Campaign, error) {
	c, err := s.campaigns.FindOne(ctx, &Campaign{CampaignID: campaignID, TenantID: tenantID})
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errutil.NotFound(fmt.Sprintf("campaign %s not found", campaignID), nil)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, tenantID string, p pagination.Pagination) ([]*Campaign, *pagination.PageInfo, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 10
	}

	campaigns, err := s.campaigns.Find(ctx, &Campaign{TenantID: tenantID},
		option.ApplyPagination(p),
		option.WithSortBy(option.QuerySortBy{
			SortBy:  "created_at",
			OrderBy: "desc",
			Allow:   map[string]bool{"created_at": true},
		}),
	)
	if err != nil {
		return nil, nil, err
	}

	pageInfo := pagination.BuildCursorPageInfo(campaigns, int32(limit), func(c *Campaign) string {
		cursor, _ := pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: c.CreatedAt.Format(time.RFC3339Nano),
			ID:        c.CampaignID,
		})
		return cursor
	})

	if len(campaigns) > limit {
		campaigns = campaigns[:limit]
	}

	return campaigns, pageInfo, nil
}

type UpdateCampaignRequest struct {
	Name                  string     `json:"name"`
	Description           string     `json:"description"`
	Status                Status     `json:"status"`
	EligibilityExpression *string    `json:"eligibility_expression"`
	StartAt               *time.Time `json:"start_at"`
	EndAt                 *time.Time `json:"end_at"`
}

func (s *Service) Update(ctx context.Context, tenantID, campaignID string, req UpdateCampaignRequest) (*Campaign, error) {
	c, err := s.Get(ctx, tenantID, campaignID)
	if err != nil {
		return nil, err
	}

	if c.Status == StatusArchived {
		return nil, errutil.UnprocessableEntity("archived campaigns cannot be updated", nil)
	}

	if req.Name != "" {
		c.Name = req.Name
		c.Slug = slug.Make(req.Name)
	}
	if req.Description != "" {
		c.Description = req.Description
	}
	if req.Status != "" {
		switch req.Status {
		case StatusDraft, StatusActive, StatusInactive:
			c.Status = req.Status
		default:
			return nil, errutil.BadRequest(fmt.Sprintf("invalid status %s", req.Status), nil)
		}
	}
	if req.EligibilityExpression != nil {
		if *req.EligibilityExpression != "" {
			if err := s.validateExpression(*req.EligibilityExpression); err != nil {
				return nil, errutil.ValidationFailed("invalid eligibility expression", err)
			}
		}
		c.EligibilityExpression = *req.EligibilityExpression
	}
	if req.StartAt != nil {
		c.StartAt = req.StartAt
	}
	if req.EndAt != nil {
		c.EndAt = req.EndAt
	}

	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		zap.L().Error("failed to update campaign", zap.Error(err), zap.String("campaign_id", campaignID))
		return nil, err
	}

	return c, nil
}

func (s *Service) Archive(ctx context.Context, tenantID, campaignID string) (*Campaign, error) {
	c, err := s.Get(ctx, tenantID, campaignID)
	if err != nil {
		return nil, err
	}

	c.Status = StatusArchived
	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, err
	}

	return c, nil
}

// ========================================================
// Roster
// ========================================================

type AddCreatorRequest struct {
	CreatorID string         `json:"creator_id" binding:"required"`
	Traits    datatypes.JSON `json:"traits"`
}

func (s *Service) AddCreator(ctx context.Context, tenantID, campaignID string, req AddCreatorRequest) (*CampaignCreator, error) {
	if _, err := s.Get(ctx, tenantID, campaignID); err != nil {
		return nil, err
	}

	existing, err := s.roster.FindOne(ctx, &CampaignCreator{
		TenantID:   tenantID,
		CampaignID: campaignID,
		CreatorID:  req.CreatorID,
	})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errutil.Conflict(fmt.Sprintf("creator %s is already on the campaign", req.CreatorID), nil)
	}

	row := CampaignCreator{
		ID:         s.node.Generate().String(),
		TenantID:   tenantID,
		CampaignID: campaignID,
		CreatorID:  req.CreatorID,
		Traits:     req.Traits,
	}

	if err := s.roster.Create(ctx, &row); err != nil {
		zap.L().Error("failed to add creator to roster", zap.Error(err), zap.String("campaign_id", campaignID))
		return nil, err
	}

	return &row, nil
}

func (s *Service) RemoveCreator(ctx context.Context, tenantID, campaignID, creatorID string) error {
	res := s.db.WithContext(ctx).
		Where("tenant_id = ? AND campaign_id = ? AND creator_id = ?", tenantID, campaignID, creatorID).
		Delete(&CampaignCreator{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errutil.NotFound(fmt.Sprintf("creator %s is not on the campaign", creatorID), nil)
	}
	return nil
}

func (s *Service) ListCreators(ctx context.Context, tenantID, campaignID string) ([]*CampaignCreator, error) {
	return s.roster.Find(ctx, &CampaignCreator{TenantID: tenantID, CampaignID: campaignID})
}

// ========================================================
// Eligibility
// ========================================================

// OnRoster returns the roster row for a creator, or nil.
func (s *Service) OnRoster(ctx context.Context, tenantID, campaignID, creatorID string) (*CampaignCreator, error) {
	return s.roster.FindOne(ctx, &CampaignCreator{
		TenantID:   tenantID,
		CampaignID: campaignID,
		CreatorID:  creatorID,
	})
}

// EligibleCreator evaluates roster membership and, when the campaign carries
// an eligibility expression, the CEL expression over the creator's traits.
func (s *Service) EligibleCreator(ctx context.Context, c *Campaign, creatorID string) (bool, string, error) {
	row, err := s.OnRoster(ctx, c.TenantID, c.CampaignID, creatorID)
	if err != nil {
		return false, "", err
	}
	if row == nil {
		return false, "creator is not on the campaign roster", nil
	}

	if c.EligibilityExpression == "" {
		return true, "", nil
	}

	attrs := map[string]interface{}{}
	if len(row.Traits) > 0 {
		if err := json.Unmarshal(row.Traits, &attrs); err != nil {
			return false, "", err
		}
	}

	// JSON numbers decode as float64; integral trait values compare as ints.
	for k, v := range attrs {
		if f, ok := v.(float64); ok && f == math.Trunc(f) {
			attrs[k] = int64(f)
		}
	}

	env, err := celengine.BuildCelEnvFromAttributes(attrs)
	if err != nil {
		return false, "", err
	}

	ok, err := celengine.Evaluate(env, c.EligibilityExpression, attrs)
	if err != nil {
		zap.L().Warn("failed to evaluate eligibility expression",
			zap.Error(err), zap.String("campaign_id", c.CampaignID))
		return false, "", err
	}
	if !ok {
		return false, "creator does not meet the campaign eligibility criteria", nil
	}

	return true, "", nil
}

func (s *Service) validateExpression(expr string) error {
	return celengine.ValidateSyntax(expr)
}
