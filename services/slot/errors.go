package slot

import (
	"fmt"

	"creatorplane/pkg/errutil"
)

func ErrSlotFull(slotID string, max int) error {
	return errutil.Conflict(
		fmt.Sprintf("slot %s already has %d creators assigned", slotID, max), nil)
}

func ErrNotAssigned(slotID, creatorID string) error {
	return errutil.Forbidden(
		fmt.Sprintf("creator %s is not assigned to slot %s", creatorID, slotID), nil)
}

func ErrSlotClosed(slotID string, status Status) error {
	return errutil.UnprocessableEntity(
		fmt.Sprintf("slot %s is %s and no longer accepts submissions", slotID, status), nil)
}
