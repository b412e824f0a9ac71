package submission

import (
	"time"

	"creatorplane/services/video"
)

type Kind string

const (
	KindDraft    Kind = "draft"
	KindRevision Kind = "revision"
)

type PayloadType string

const (
	PayloadFile PayloadType = "file"
	PayloadURL  PayloadType = "url"
)

// Submission is one immutable entry in a video's revision history. Rows are
// only ever appended; edits happen by submitting again.
type Submission struct {
	SubmissionID string         `gorm:"column:submission_id;primaryKey" json:"submission_id"`
	TenantID     string         `gorm:"column:tenant_id;index;not null" json:"tenant_id"`
	VideoID      string         `gorm:"column:video_id;index;not null" json:"video_id"`
	SlotID       string         `gorm:"column:slot_id;index;not null" json:"slot_id"`
	CreatorID    string         `gorm:"column:creator_id;index;not null" json:"creator_id"`
	Code         string         `gorm:"column:code" json:"code"`
	Kind         Kind           `gorm:"column:kind;type:varchar(20);not null" json:"kind"`
	PayloadType  PayloadType    `gorm:"column:payload_type;type:varchar(10);not null" json:"payload_type"`
	FileRef      string         `gorm:"column:file_ref" json:"file_ref,omitempty"`
	VideoURL     string         `gorm:"column:video_url" json:"video_url,omitempty"`
	Platform     video.Platform `gorm:"column:platform;type:varchar(20);not null" json:"platform"`
	Notes        string         `gorm:"column:notes;type:text" json:"notes,omitempty"`
	Width        int            `gorm:"column:width;not null;default:0" json:"width,omitempty"`
	Height       int            `gorm:"column:height;not null;default:0" json:"height,omitempty"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Submission) TableName() string {
	return "submissions"
}
