package video

import (
	"fmt"

	"creatorplane/pkg/errutil"
)

func ErrInvalidState(current Status, t Transition) error {
	return errutil.UnprocessableEntity(
		fmt.Sprintf("transition %s is not allowed from status %s", t, current), nil,
	)
}

func ErrUnauthorizedTransition(role string, t Transition) error {
	return errutil.Forbidden(
		fmt.Sprintf("role %s may not perform transition %s", role, t), nil,
	)
}

func ErrConcurrentModification(videoID string) error {
	return errutil.Conflict(
		fmt.Sprintf("video %s was modified concurrently, reload and retry", videoID), nil,
	)
}

func ErrInvalidURLFormat(platform, url string) error {
	return errutil.BadRequest(
		fmt.Sprintf("url %q does not match the expected %s link format", url, platform), nil,
	)
}

func ErrNotesRequired(t Transition) error {
	return errutil.ValidationFailed(
		fmt.Sprintf("feedback notes are required for transition %s", t), nil,
	)
}
