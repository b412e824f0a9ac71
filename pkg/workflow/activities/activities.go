package activities

const (
	EscalateStaleRevision = "EscalateStaleRevision"
)
