package slot

import (
	"context"
	"fmt"
	"time"

	"creatorplane/pkg/errutil"
	"creatorplane/services/video"

	"gorm.io/gorm"
)

// ========================================================
// Claim Eligibility
// ========================================================

// CanClaim decides whether a creator may submit a draft against a slot.
// It returns nil when the claim is allowed and a typed error carrying the
// reason otherwise. Claims are never recorded on the slot; occupancy is
// derived from the videos referencing it.
func (s *Service) CanClaim(ctx context.Context, sl *ScheduledSlot, creatorID string) error {
	if sl.Status != StatusOpen {
		return ErrSlotClosed(sl.SlotID, sl.Status)
	}

	switch sl.AssignmentType {
	case AssignSpecificCreator:
		if sl.TargetCreatorID != creatorID {
			return ErrNotAssigned(sl.SlotID, creatorID)
		}
		return nil

	case AssignAnyCreator, AssignMultipleCreators:
		if err := s.checkRoster(ctx, sl, creatorID); err != nil {
			return err
		}
		return s.RecheckClaim(ctx, s.db, sl, creatorID)

	default:
		return errutil.Internal(
			fmt.Sprintf("slot %s has unknown assignment type %s", sl.SlotID, sl.AssignmentType), nil)
	}
}

// RecheckClaim runs the duplicate and capacity checks against the caller's
// transaction. CanClaim happens before the draft insert, so a racing draft
// can land in between; the insert transaction recounts before committing.
func (s *Service) RecheckClaim(ctx context.Context, tx *gorm.DB, sl *ScheduledSlot, creatorID string) error {
	if sl.AssignmentType == AssignSpecificCreator {
		return nil
	}

	held, err := s.holdsActiveVideo(ctx, tx, sl, creatorID)
	if err != nil {
		return err
	}
	if held {
		return errutil.Conflict(
			fmt.Sprintf("creator %s already has an active video on slot %s", creatorID, sl.SlotID), nil)
	}

	if sl.AssignmentType == AssignMultipleCreators {
		count, err := s.activeCreatorCount(ctx, tx, sl)
		if err != nil {
			return err
		}
		if count >= int64(sl.MaxCreators) {
			return ErrSlotFull(sl.SlotID, sl.MaxCreators)
		}
	}
	return nil
}

func (s *Service) checkRoster(ctx context.Context, sl *ScheduledSlot, creatorID string) error {
	c, err := s.campaigns.Get(ctx, sl.TenantID, sl.CampaignID)
	if err != nil {
		return err
	}

	if !c.IsActive(time.Now()) {
		return errutil.Forbidden(
			fmt.Sprintf("campaign %s is not accepting submissions", c.CampaignID), nil)
	}

	ok, reason, err := s.campaigns.EligibleCreator(ctx, c, creatorID)
	if err != nil {
		return err
	}
	if !ok {
		return errutil.Forbidden(reason, nil)
	}
	return nil
}

// holdsActiveVideo reports whether the creator already has a video on the
// slot that is not parked in revision_requested.
func (s *Service) holdsActiveVideo(ctx context.Context, tx *gorm.DB, sl *ScheduledSlot, creatorID string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&video.Video{}).
		Where("tenant_id = ? AND slot_id = ? AND creator_id = ? AND status <> ?",
			sl.TenantID, sl.SlotID, creatorID, video.StatusRevisionRequested).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// activeCreatorCount counts distinct creators holding an active video on the
// slot. A creator waiting on a revision frees their place.
func (s *Service) activeCreatorCount(ctx context.Context, tx *gorm.DB, sl *ScheduledSlot) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&video.Video{}).
		Distinct("creator_id").
		Where("tenant_id = ? AND slot_id = ? AND status <> ?",
			sl.TenantID, sl.SlotID, video.StatusRevisionRequested).
		Count(&count).Error
	return count, err
}
