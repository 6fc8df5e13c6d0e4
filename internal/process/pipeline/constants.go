package pipeline

// Step labels for logs and the step-duration metric.
const (
	stepDiscovery = "discovery"
	stepIngest    = "ingest"
	stepKeywords  = "keywords"
	stepSentiment = "sentiment"
)

const (
	statusCompleted = "completed"
	statusPartial   = "completed_with_errors"

	defaultHotTopicLimit = 20
)
