package campaign

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
	StatusArchived Status = "ARCHIVED"
)

// Campaign is the container for scheduled slots. The roster of creators
// allowed to claim its slots lives in campaign_creators.
type Campaign struct {
	CampaignID  string `gorm:"column:campaign_id;primaryKey" json:"campaign_id"`
	TenantID    string `gorm:"column:tenant_id;index;not null" json:"tenant_id"`
	Code        string `gorm:"column:code" json:"code"`
	Name        string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Slug        string `gorm:"column:slug;index" json:"slug"`
	Description string `gorm:"column:description;type:text" json:"description,omitempty"`
	Status      Status `gorm:"column:status;type:varchar(50);not null;default:'DRAFT'" json:"status"`
	// EligibilityExpression is an optional CEL expression over creator traits
	// evaluated on top of roster membership when slots are claimed.
	EligibilityExpression string         `gorm:"column:eligibility_expression;type:text" json:"eligibility_expression,omitempty"`
	StartAt               *time.Time     `gorm:"column:start_at" json:"start_at,omitempty"`
	EndAt                 *time.Time     `gorm:"column:end_at" json:"end_at,omitempty"`
	Metadata              datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt             time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

// IsActive checks if campaign is currently active based on time range & status.
func (c *Campaign) IsActive(now time.Time) bool {
	if c.Status != StatusActive {
		return false
	}
	if c.StartAt != nil && now.Before(*c.StartAt) {
		return false
	}
	if c.EndAt != nil && now.After(*c.EndAt) {
		return false
	}
	return true
}

// CampaignCreator is one roster row: a creator invited onto a campaign.
type CampaignCreator struct {
	ID         string `gorm:"column:id;primaryKey" json:"id"`
	TenantID   string `gorm:"column:tenant_id;index;not null" json:"tenant_id"`
	CampaignID string `gorm:"column:campaign_id;uniqueIndex:idx_campaign_creator;not null" json:"campaign_id"`
	CreatorID  string `gorm:"column:creator_id;uniqueIndex:idx_campaign_creator;not null" json:"creator_id"`
	// Traits feed the campaign eligibility expression, e.g. follower counts
	// or verticals synced from the creator profile.
	Traits    datatypes.JSON `gorm:"column:traits;type:jsonb" json:"traits,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (CampaignCreator) TableName() string {
	return "campaign_creators"
}
