package slot

import (
	"context"
	"fmt"
	"testing"
	"time"

	"creatorplane/pkg/config"
	"creatorplane/pkg/errutil"
	"creatorplane/services/campaign"
	"creatorplane/services/testutil"
	"creatorplane/services/video"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeSequence struct {
	n int
}

func (f *fakeSequence) next(prefix string) (string, error) {
	f.n++
	return fmt.Sprintf("%s-260831-%03dAA", prefix, f.n), nil
}

func (f *fakeSequence) NextCampaignCode(ctx context.Context, tenantID string) (string, error) {
	return f.next("CMP")
}

func (f *fakeSequence) NextSlotCode(ctx context.Context, tenantID string) (string, error) {
	return f.next("SLT")
}

func (f *fakeSequence) NextVideoCode(ctx context.Context, tenantID string) (string, error) {
	return f.next("VID")
}

func (f *fakeSequence) NextSubmissionCode(ctx context.Context, tenantID string) (string, error) {
	return f.next("SUB")
}

type slotFixture struct {
	db        *gorm.DB
	svc       *Service
	campaigns *campaign.Service
	campaign  *campaign.Campaign
}

func newSlotFixture(t *testing.T) *slotFixture {
	t.Helper()

	db := testutil.NewTestDB(t,
		&campaign.Campaign{}, &campaign.CampaignCreator{},
		&ScheduledSlot{}, &video.Video{},
	)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	campaigns := campaign.NewService(campaign.ServiceParams{
		DB:   db,
		Node: node,
		Seq:  &fakeSequence{},
	})

	svc := NewService(ServiceParams{
		DB:        db,
		Config:    &config.Config{},
		Node:      node,
		Seq:       &fakeSequence{},
		Campaigns: campaigns,
	})

	c, err := campaigns.Create(context.Background(), "tenant-1", campaign.CreateCampaignRequest{
		Name: "Spring Push",
	})
	require.NoError(t, err)

	c, err = campaigns.Update(context.Background(), "tenant-1", c.CampaignID, campaign.UpdateCampaignRequest{
		Status: campaign.StatusActive,
	})
	require.NoError(t, err)

	return &slotFixture{db: db, svc: svc, campaigns: campaigns, campaign: c}
}

func (f *slotFixture) addToRoster(t *testing.T, creatorID string, traits string) {
	t.Helper()

	req := campaign.AddCreatorRequest{CreatorID: creatorID}
	if traits != "" {
		req.Traits = datatypes.JSON(traits)
	}
	_, err := f.campaigns.AddCreator(context.Background(), "tenant-1", f.campaign.CampaignID, req)
	require.NoError(t, err)
}

func (f *slotFixture) addVideo(t *testing.T, slotID, creatorID string, status video.Status) {
	t.Helper()

	require.NoError(t, f.db.Create(&video.Video{
		VideoID:   fmt.Sprintf("vid-%s-%s-%d", slotID, creatorID, time.Now().UnixNano()),
		TenantID:  "tenant-1",
		SlotID:    slotID,
		CreatorID: creatorID,
		Platform:  video.PlatformTikTok,
		Status:    status,
		Version:   1,
	}).Error)
}

func (f *slotFixture) createSlot(t *testing.T, req CreateSlotRequest) *ScheduledSlot {
	t.Helper()

	req.CampaignID = f.campaign.CampaignID
	if req.ScheduledDate.IsZero() {
		req.ScheduledDate = time.Now().UTC().Truncate(24 * time.Hour)
	}
	sl, err := f.svc.Create(context.Background(), "tenant-1", req)
	require.NoError(t, err)
	return sl
}

func TestCanClaimSpecificCreator(t *testing.T) {
	f := newSlotFixture(t)
	ctx := context.Background()

	sl := f.createSlot(t, CreateSlotRequest{
		AssignmentType:  AssignSpecificCreator,
		TargetCreatorID: "creator-1",
	})

	require.NoError(t, f.svc.CanClaim(ctx, sl, "creator-1"))

	err := f.svc.CanClaim(ctx, sl, "creator-2")
	require.Error(t, err)
	require.Equal(t, errutil.StatusForbidden, errutil.StatusOf(err))
}

func TestCanClaimAnyCreatorRequiresRoster(t *testing.T) {
	f := newSlotFixture(t)
	ctx := context.Background()

	sl := f.createSlot(t, CreateSlotRequest{AssignmentType: AssignAnyCreator})

	err := f.svc.CanClaim(ctx, sl, "creator-1")
	require.Error(t, err)
	require.Equal(t, errutil.StatusForbidden, errutil.StatusOf(err))

	f.addToRoster(t, "creator-1", "")
	require.NoError(t, f.svc.CanClaim(ctx, sl, "creator-1"))
}

func TestCanClaimInactiveCampaign(t *testing.T) {
	f := newSlotFixture(t)
	ctx := context.Background()

	f.addToRoster(t, "creator-1", "")
	sl := f.createSlot(t, CreateSlotRequest{AssignmentType: AssignAnyCreator})

	_, err := f.campaigns.Update(ctx, "tenant-1", f.campaign.CampaignID, campaign.UpdateCampaignRequest{
		Status: campaign.StatusInactive,
	})
	require.NoError(t, err)

	err = f.svc.CanClaim(ctx, sl, "creator-1")
	require.Error(t, err)
	require.Equal(t, errutil.StatusForbidden, errutil.StatusOf(err))
}

func TestCanClaimAnyCreatorDuplicate(t *testing.T) {
	f := newSlotFixture(t)
	ctx := context.Background()

	sl := f.createSlot(t, CreateSlotRequest{AssignmentType: AssignAnyCreator})
	f.addToRoster(t, "creator-1", "")

	f.addVideo(t, sl.SlotID, "creator-1", video.StatusPendingAdminReview)

	err := f.svc.CanClaim(ctx, sl, "creator-1")
	require.Error(t, err)
	require.Equal(t, errutil.StatusConflict, errutil.StatusOf(err))
}

func TestCanClaimRevisionRequestedDoesNotBlock(t *testing.T) {
	f := newSlotFixture(t)
	ctx := context.Background()

	sl := f.createSlot(t, CreateSlotRequest{AssignmentType: AssignAnyCreator})
	f.addToRoster(t, "creator-1", "")

	f.addVideo(t, sl.SlotID, "creator-1", video.StatusRevisionRequested)

	require.NoError(t, f.svc.CanClaim(ctx, sl, "creator-1"))
}

func TestCanClaimMultipleCreatorsCapacity(t *testing.T) {
	f := newSlotFixture(t)
	ctx := context.Background()

	sl := f.createSlot(t, CreateSlotRequest{
		AssignmentType: AssignMultipleCreators,
		MaxCreators:    2,
	})

	for _, id := range []string{"creator-1", "creator-2", "creator-3"} {
		f.addToRoster(t, id, "")
	}

	f.addVideo(t, sl.SlotID, "creator-1", video.StatusPendingAdminReview)
	f.addVideo(t, sl.SlotID, "creator-2", video.StatusLive)

	err := f.svc.CanClaim(ctx, sl, "creator-3")
	require.Error(t, err)
	require.Equal(t, errutil.StatusConflict, errutil.StatusOf(err))
}

func TestRecheckClaimSeesLateArrivals(t *testing.T) {
	f := newSlotFixture(t)
	ctx := context.Background()

	f.addToRoster(t, "creator-1", "")
	f.addToRoster(t, "creator-2", "")
	sl := f.createSlot(t, CreateSlotRequest{
		AssignmentType: AssignMultipleCreators,
		MaxCreators:    1,
	})

	// both pass the pre-insert check before either draft commits
	require.NoError(t, f.svc.CanClaim(ctx, sl, "creator-1"))
	require.NoError(t, f.svc.CanClaim(ctx, sl, "creator-2"))

	f.addVideo(t, sl.SlotID, "creator-1", video.StatusPendingAdminReview)

	err := f.svc.RecheckClaim(ctx, f.db, sl, "creator-2")
	require.Error(t, err)
	require.Equal(t, errutil.StatusConflict, errutil.StatusOf(err))

	// the same creator racing their own duplicate is also caught
	err = f.svc.RecheckClaim(ctx, f.db, sl, "creator-1")
	require.Error(t, err)
	require.Equal(t, errutil.StatusConflict, errutil.StatusOf(err))
}

func TestCanClaimMultipleCreatorsFreedByRevision(t *testing.T) {
	f := newSlotFixture(t)
	ctx := context.Background()

	sl := f.createSlot(t, CreateSlotRequest{
		AssignmentType: AssignMultipleCreators,
		MaxCreators:    2,
	})

	for _, id := range []string{"creator-1", "creator-2", "creator-3"} {
		f.addToRoster(t, id, "")
	}

	f.addVideo(t, sl.SlotID, "creator-1", video.StatusPendingAdminReview)
	f.addVideo(t, sl.SlotID, "creator-2", video.StatusRevisionRequested)

	require.NoError(t, f.svc.CanClaim(ctx, sl, "creator-3"))
}

func TestCanClaimEligibilityExpression(t *testing.T) {
	f := newSlotFixture(t)
	ctx := context.Background()

	_, err := f.campaigns.Update(ctx, "tenant-1", f.campaign.CampaignID, campaign.UpdateCampaignRequest{
		EligibilityExpression: strPtr(`followers >= 1000`),
	})
	require.NoError(t, err)

	// service caches nothing; reload the campaign through the slot path
	sl := f.createSlot(t, CreateSlotRequest{AssignmentType: AssignAnyCreator})

	f.addToRoster(t, "creator-big", `{"followers": 50000}`)
	f.addToRoster(t, "creator-small", `{"followers": 10}`)

	require.NoError(t, f.svc.CanClaim(ctx, sl, "creator-big"))

	err = f.svc.CanClaim(ctx, sl, "creator-small")
	require.Error(t, err)
	require.Equal(t, errutil.StatusForbidden, errutil.StatusOf(err))
}

func TestCanClaimExpiredSlot(t *testing.T) {
	f := newSlotFixture(t)
	ctx := context.Background()

	sl := f.createSlot(t, CreateSlotRequest{
		AssignmentType:  AssignSpecificCreator,
		TargetCreatorID: "creator-1",
	})

	require.NoError(t, f.db.Model(&ScheduledSlot{}).
		Where("slot_id = ?", sl.SlotID).
		Update("status", StatusExpired).Error)

	sl.Status = StatusExpired
	err := f.svc.CanClaim(ctx, sl, "creator-1")
	require.Error(t, err)
	require.Equal(t, errutil.StatusUnprocessableEntity, errutil.StatusOf(err))
}

func strPtr(s string) *string { return &s }
