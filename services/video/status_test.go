package video

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		transition Transition
		from       Status
		to         Status
		notes      bool
	}{
		{TransitionAdminApprove, StatusPendingAdminReview, StatusPendingClientReview, false},
		{TransitionAdminRequestRevision, StatusPendingAdminReview, StatusRevisionRequested, true},
		{TransitionClientApprove, StatusPendingClientReview, StatusClientApproved, false},
		{TransitionClientRequestRevision, StatusPendingClientReview, StatusRevisionRequested, true},
		{TransitionResubmit, StatusRevisionRequested, StatusPendingAdminReview, false},
		{TransitionFinalSignOff, StatusClientApproved, StatusReadyToPost, false},
		{TransitionPublish, StatusReadyToPost, StatusLive, false},
	}

	for _, tc := range cases {
		t.Run(tc.transition.String(), func(t *testing.T) {
			rule, ok := tc.transition.Rule()
			require.True(t, ok)
			require.Equal(t, tc.from, rule.From)
			require.Equal(t, tc.to, rule.To)
			require.Equal(t, tc.notes, rule.NotesRequired)
		})
	}
}

func TestUnknownTransition(t *testing.T) {
	_, ok := Transition("teleport").Rule()
	require.False(t, ok)

	// submit is notification-only, not a guarded transition
	_, ok = TransitionSubmit.Rule()
	require.False(t, ok)
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{
		StatusPendingAdminReview, StatusPendingClientReview, StatusRevisionRequested,
		StatusClientApproved, StatusReadyToPost, StatusLive,
	} {
		require.True(t, s.Valid(), string(s))
	}

	require.False(t, Status("archived").Valid())
	require.False(t, Status("").Valid())
}

func TestStatusTerminal(t *testing.T) {
	require.True(t, StatusLive.Terminal())
	require.False(t, StatusReadyToPost.Terminal())
	require.False(t, StatusPendingAdminReview.Terminal())
}

func TestStatusActive(t *testing.T) {
	require.True(t, StatusPendingAdminReview.Active())
	require.True(t, StatusLive.Active())
	require.False(t, StatusRevisionRequested.Active())
	require.False(t, Status("bogus").Active())
}
