package slot

import (
	"time"
)

type AssignmentType string

const (
	AssignSpecificCreator  AssignmentType = "specific_creator"
	AssignAnyCreator       AssignmentType = "any_creator"
	AssignMultipleCreators AssignmentType = "multiple_creators"
)

func (a AssignmentType) Valid() bool {
	switch a {
	case AssignSpecificCreator, AssignAnyCreator, AssignMultipleCreators:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusOpen    Status = "OPEN"
	StatusExpired Status = "EXPIRED"
)

// ScheduledSlot is one posting opportunity on a campaign calendar. The slot
// itself never records who claimed it; claims are derived from the videos
// hanging off it.
type ScheduledSlot struct {
	SlotID          string         `gorm:"column:slot_id;primaryKey" json:"slot_id"`
	TenantID        string         `gorm:"column:tenant_id;index;not null" json:"tenant_id"`
	CampaignID      string         `gorm:"column:campaign_id;index;not null" json:"campaign_id"`
	Code            string         `gorm:"column:code" json:"code"`
	ScheduledDate   time.Time      `gorm:"column:scheduled_date;not null" json:"scheduled_date"`
	ScheduledTime   string         `gorm:"column:scheduled_time;type:varchar(5)" json:"scheduled_time,omitempty"`
	AssignmentType  AssignmentType `gorm:"column:assignment_type;type:varchar(30);not null" json:"assignment_type"`
	TargetCreatorID string         `gorm:"column:target_creator_id;index" json:"target_creator_id,omitempty"`
	MaxCreators     int            `gorm:"column:max_creators;not null;default:0" json:"max_creators,omitempty"`
	Status          Status         `gorm:"column:status;type:varchar(20);not null;default:'OPEN'" json:"status"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ScheduledSlot) TableName() string {
	return "scheduled_slots"
}
