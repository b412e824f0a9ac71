package campaign

import (
	"context"
	"fmt"
	"testing"

	"creatorplane/pkg/errutil"
	"creatorplane/services/testutil"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
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

func newTestService(t *testing.T) *Service {
	t.Helper()

	db := testutil.NewTestDB(t, &Campaign{}, &CampaignCreator{})

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(ServiceParams{
		DB:   db,
		Node: node,
		Seq:  &fakeSequence{},
	})
}

func TestCreateCampaign(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "tenant-1", CreateCampaignRequest{
		Name:        "Summer Launch 2026",
		Description: "Short-form launch content",
	})
	require.NoError(t, err)
	require.NotEmpty(t, c.CampaignID)
	require.Equal(t, "CMP-260831-001AA", c.Code)
	require.Equal(t, "summer-launch-2026", c.Slug)
	require.Equal(t, StatusDraft, c.Status)
}

func TestCreateCampaignInvalidExpression(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), "tenant-1", CreateCampaignRequest{
		Name:                  "Broken",
		EligibilityExpression: "followers >=",
	})
	require.Error(t, err)
	require.Equal(t, errutil.StatusValidationFailed, errutil.StatusOf(err))
}

func TestGetCampaignNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Get(context.Background(), "tenant-1", "missing")
	require.Error(t, err)
	require.Equal(t, errutil.StatusNotFound, errutil.StatusOf(err))
}

func TestGetCampaignTenantIsolation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "tenant-1", CreateCampaignRequest{Name: "Isolated"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "tenant-2", c.CampaignID)
	require.Error(t, err)
	require.Equal(t, errutil.StatusNotFound, errutil.StatusOf(err))
}

func TestUpdateArchivedCampaign(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "tenant-1", CreateCampaignRequest{Name: "Old"})
	require.NoError(t, err)

	_, err = svc.Archive(ctx, "tenant-1", c.CampaignID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, "tenant-1", c.CampaignID, UpdateCampaignRequest{Name: "New"})
	require.Error(t, err)
	require.Equal(t, errutil.StatusUnprocessableEntity, errutil.StatusOf(err))
}

func TestRosterAddAndRemove(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "tenant-1", CreateCampaignRequest{Name: "Roster"})
	require.NoError(t, err)

	_, err = svc.AddCreator(ctx, "tenant-1", c.CampaignID, AddCreatorRequest{CreatorID: "creator-1"})
	require.NoError(t, err)

	_, err = svc.AddCreator(ctx, "tenant-1", c.CampaignID, AddCreatorRequest{CreatorID: "creator-1"})
	require.Error(t, err)
	require.Equal(t, errutil.StatusConflict, errutil.StatusOf(err))

	creators, err := svc.ListCreators(ctx, "tenant-1", c.CampaignID)
	require.NoError(t, err)
	require.Len(t, creators, 1)

	require.NoError(t, svc.RemoveCreator(ctx, "tenant-1", c.CampaignID, "creator-1"))

	err = svc.RemoveCreator(ctx, "tenant-1", c.CampaignID, "creator-1")
	require.Error(t, err)
	require.Equal(t, errutil.StatusNotFound, errutil.StatusOf(err))
}

func TestEligibleCreator(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "tenant-1", CreateCampaignRequest{
		Name:                  "Gated",
		EligibilityExpression: `tier == "gold" && followers >= 1000`,
	})
	require.NoError(t, err)

	ok, reason, err := svc.EligibleCreator(ctx, c, "creator-1")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, "creator is not on the campaign roster", reason)

	_, err = svc.AddCreator(ctx, "tenant-1", c.CampaignID, AddCreatorRequest{
		CreatorID: "creator-1",
		Traits:    datatypes.JSON(`{"tier":"gold","followers":5000}`),
	})
	require.NoError(t, err)

	ok, reason, err = svc.EligibleCreator(ctx, c, "creator-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, reason)

	_, err = svc.AddCreator(ctx, "tenant-1", c.CampaignID, AddCreatorRequest{
		CreatorID: "creator-2",
		Traits:    datatypes.JSON(`{"tier":"silver","followers":5000}`),
	})
	require.NoError(t, err)

	ok, reason, err = svc.EligibleCreator(ctx, c, "creator-2")
	require.NoError(t, err)
	require.False(t, ok)
	require.NotEmpty(t, reason)
}

func TestEligibleCreatorWithoutExpression(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "tenant-1", CreateCampaignRequest{Name: "Open"})
	require.NoError(t, err)

	_, err = svc.AddCreator(ctx, "tenant-1", c.CampaignID, AddCreatorRequest{CreatorID: "creator-1"})
	require.NoError(t, err)

	ok, _, err := svc.EligibleCreator(ctx, c, "creator-1")
	require.NoError(t, err)
	require.True(t, ok)
}
