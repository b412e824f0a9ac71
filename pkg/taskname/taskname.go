package taskname

const (
	// Video tasks
	VideoReviewNotify = "video:review:notify"
	VideoProbe        = "video:probe"

	// Slot tasks
	SlotExpiryRun = "slot:expiry:run"
)
