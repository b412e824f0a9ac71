package slot

import (
	"context"
	"testing"
	"time"

	"creatorplane/pkg/errutil"
	"creatorplane/services/video"

	"github.com/stretchr/testify/require"
)

func TestCreateSlotValidation(t *testing.T) {
	f := newSlotFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  CreateSlotRequest
	}{
		{"specific without target", CreateSlotRequest{AssignmentType: AssignSpecificCreator}},
		{"specific with max", CreateSlotRequest{AssignmentType: AssignSpecificCreator, TargetCreatorID: "c1", MaxCreators: 3}},
		{"any with target", CreateSlotRequest{AssignmentType: AssignAnyCreator, TargetCreatorID: "c1"}},
		{"any with max", CreateSlotRequest{AssignmentType: AssignAnyCreator, MaxCreators: 3}},
		{"multiple without max", CreateSlotRequest{AssignmentType: AssignMultipleCreators}},
		{"multiple below floor", CreateSlotRequest{AssignmentType: AssignMultipleCreators, MaxCreators: 1}},
		{"multiple above ceiling", CreateSlotRequest{AssignmentType: AssignMultipleCreators, MaxCreators: 21}},
		{"multiple with target", CreateSlotRequest{AssignmentType: AssignMultipleCreators, MaxCreators: 5, TargetCreatorID: "c1"}},
		{"bad scheduled time", CreateSlotRequest{AssignmentType: AssignAnyCreator, ScheduledTime: "25:99"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.req.CampaignID = f.campaign.CampaignID
			tc.req.ScheduledDate = time.Now().UTC()

			_, err := f.svc.Create(ctx, "tenant-1", tc.req)
			require.Error(t, err)
			require.Equal(t, errutil.StatusValidationFailed, errutil.StatusOf(err))
		})
	}
}

func TestCreateSlotUnknownAssignmentType(t *testing.T) {
	f := newSlotFixture(t)

	_, err := f.svc.Create(context.Background(), "tenant-1", CreateSlotRequest{
		CampaignID:     f.campaign.CampaignID,
		ScheduledDate:  time.Now().UTC(),
		AssignmentType: "round_robin",
	})
	require.Error(t, err)
	require.Equal(t, errutil.StatusBadRequest, errutil.StatusOf(err))
}

func TestCreateSlotUnknownCampaign(t *testing.T) {
	f := newSlotFixture(t)

	_, err := f.svc.Create(context.Background(), "tenant-1", CreateSlotRequest{
		CampaignID:     "missing",
		ScheduledDate:  time.Now().UTC(),
		AssignmentType: AssignAnyCreator,
	})
	require.Error(t, err)
	require.Equal(t, errutil.StatusNotFound, errutil.StatusOf(err))
}

func TestExpireSlots(t *testing.T) {
	f := newSlotFixture(t)
	ctx := context.Background()

	f.svc.cfg.Slot.ExpiryAfter = 24 * time.Hour

	stale := f.createSlot(t, CreateSlotRequest{
		AssignmentType: AssignAnyCreator,
		ScheduledDate:  time.Now().UTC().Add(-72 * time.Hour),
	})
	claimed := f.createSlot(t, CreateSlotRequest{
		AssignmentType: AssignAnyCreator,
		ScheduledDate:  time.Now().UTC().Add(-72 * time.Hour),
	})
	fresh := f.createSlot(t, CreateSlotRequest{
		AssignmentType: AssignAnyCreator,
		ScheduledDate:  time.Now().UTC(),
	})

	f.addVideo(t, claimed.SlotID, "creator-1", video.StatusPendingAdminReview)

	expired, err := f.svc.ExpireSlots(ctx, "tenant-1")
	require.NoError(t, err)
	require.Equal(t, 1, expired)

	got, err := f.svc.Get(ctx, "tenant-1", stale.SlotID)
	require.NoError(t, err)
	require.Equal(t, StatusExpired, got.Status)

	got, err = f.svc.Get(ctx, "tenant-1", claimed.SlotID)
	require.NoError(t, err)
	require.Equal(t, StatusOpen, got.Status)

	got, err = f.svc.Get(ctx, "tenant-1", fresh.SlotID)
	require.NoError(t, err)
	require.Equal(t, StatusOpen, got.Status)
}

func TestExpireSlotsDisabled(t *testing.T) {
	f := newSlotFixture(t)

	f.createSlot(t, CreateSlotRequest{
		AssignmentType: AssignAnyCreator,
		ScheduledDate:  time.Now().UTC().Add(-200 * time.Hour),
	})

	expired, err := f.svc.ExpireSlots(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.Zero(t, expired)
}

func TestTenantIDs(t *testing.T) {
	f := newSlotFixture(t)

	f.createSlot(t, CreateSlotRequest{AssignmentType: AssignAnyCreator})

	tenants, err := f.svc.TenantIDs(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"tenant-1"}, tenants)
}
