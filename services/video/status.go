package video

// Status is the review state a video sits in. Values are stored as-is in the
// database, so they never change meaning between releases.
type Status string

const (
	StatusPendingAdminReview  Status = "pending_admin_review"
	StatusPendingClientReview Status = "pending_client_review"
	StatusRevisionRequested   Status = "revision_requested"
	StatusClientApproved      Status = "client_approved"
	StatusReadyToPost         Status = "ready_to_post"
	StatusLive                Status = "live"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPendingAdminReview, StatusPendingClientReview, StatusRevisionRequested,
		StatusClientApproved, StatusReadyToPost, StatusLive:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition leaves this status.
func (s Status) Terminal() bool {
	return s == StatusLive
}

// Active reports whether the video occupies its slot for claim accounting.
// A video waiting on a revision does not block other creators.
func (s Status) Active() bool {
	return s.Valid() && s != StatusRevisionRequested
}

// Transition names double as casbin policy objects, so the access control
// matrix reads role -> transition.
type Transition string

const (
	TransitionAdminApprove          Transition = "admin_approve"
	TransitionAdminRequestRevision  Transition = "admin_request_revision"
	TransitionClientApprove         Transition = "client_approve"
	TransitionClientRequestRevision Transition = "client_request_revision"
	TransitionResubmit              Transition = "resubmit"
	TransitionFinalSignOff          Transition = "final_sign_off"
	TransitionPublish               Transition = "publish"

	// TransitionSubmit is notification-only. New drafts enter the machine at
	// pending_admin_review without a guarded transition.
	TransitionSubmit Transition = "submit"
)

type transitionRule struct {
	From          Status
	To            Status
	NotesRequired bool
	// Internal transitions carry extra writes (a new submission row, a
	// validated live URL) and only run through their dedicated entry
	// points, never through Review.
	Internal bool
}

var transitions = map[Transition]transitionRule{
	TransitionAdminApprove:          {From: StatusPendingAdminReview, To: StatusPendingClientReview},
	TransitionAdminRequestRevision:  {From: StatusPendingAdminReview, To: StatusRevisionRequested, NotesRequired: true},
	TransitionClientApprove:         {From: StatusPendingClientReview, To: StatusClientApproved},
	TransitionClientRequestRevision: {From: StatusPendingClientReview, To: StatusRevisionRequested, NotesRequired: true},
	TransitionResubmit:              {From: StatusRevisionRequested, To: StatusPendingAdminReview, Internal: true},
	TransitionFinalSignOff:          {From: StatusClientApproved, To: StatusReadyToPost},
	TransitionPublish:               {From: StatusReadyToPost, To: StatusLive, Internal: true},
}

// Rule returns the from/to pair for a transition and whether it exists.
func (t Transition) Rule() (transitionRule, bool) {
	rule, ok := transitions[t]
	return rule, ok
}

func (t Transition) String() string {
	return string(t)
}
