package private

import "time"

// StagedReport is a text submission waiting for an optional attachment
// before it is delivered to the webhook sink.
type StagedReport struct {
	Title       string
	Description string
	ClientIP    string
	SubmittedAt time.Time
}

// SubmissionRecord tracks one client's recent submission activity.
// Count and WindowStart serve the sliding-window policy, LastSubmission
// serves the cooldown policy.
type SubmissionRecord struct {
	Count          int
	WindowStart    time.Time
	LastSubmission time.Time
}

type Attachment struct {
	Filename string
	Data     []byte
}
