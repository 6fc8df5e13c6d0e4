package ingest

// Skip reason labels for the records-skipped metric.
const (
	skipReasonInvalid   = "invalid"
	skipReasonDuplicate = "duplicate"
	skipReasonNoTopic   = "no_topic"
)
