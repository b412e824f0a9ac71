package video

import (
	"time"
)

// Video is the unit carried through review. Revision history lives in the
// submissions table, keyed by VideoID.
type Video struct {
	VideoID         string    `gorm:"column:video_id;primaryKey" json:"video_id"`
	TenantID        string    `gorm:"column:tenant_id;index;not null" json:"tenant_id"`
	CampaignID      string    `gorm:"column:campaign_id;index" json:"campaign_id"`
	SlotID          string    `gorm:"column:slot_id;index;not null" json:"slot_id"`
	CreatorID       string    `gorm:"column:creator_id;index;not null" json:"creator_id"`
	Code            string    `gorm:"column:code" json:"code"`
	Platform        Platform  `gorm:"column:platform;type:varchar(20);not null" json:"platform"`
	Status          Status    `gorm:"column:status;type:varchar(50);not null;default:'pending_admin_review'" json:"status"`
	LiveURL         string    `gorm:"column:live_url" json:"live_url,omitempty"`
	RevisionCount   int       `gorm:"column:revision_count;not null;default:0" json:"revision_count"`
	LastReviewNotes string    `gorm:"column:last_review_notes;type:text" json:"last_review_notes,omitempty"`
	Version         int64     `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Video) TableName() string {
	return "videos"
}

// Notification is a review event fanned out to one recipient. Rows are
// written by the review notify worker and read by delivery channels we do
// not own.
type Notification struct {
	ID            string    `gorm:"column:id;primaryKey" json:"id"`
	TenantID      string    `gorm:"column:tenant_id;index;not null" json:"tenant_id"`
	VideoID       string    `gorm:"column:video_id;index;not null" json:"video_id"`
	RecipientID   string    `gorm:"column:recipient_id;index;not null" json:"recipient_id"`
	RecipientRole string    `gorm:"column:recipient_role;type:varchar(20);not null" json:"recipient_role"`
	Transition    string    `gorm:"column:transition;type:varchar(50);not null" json:"transition"`
	Status        string    `gorm:"column:status;type:varchar(50);not null" json:"status"`
	Notes         string    `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// Actor identifies who is performing a review action.
type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}
