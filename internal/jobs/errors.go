package jobs

import "errors"

// Job error sentinels.
var (
	// Lookup errors
	ErrJobNotFound = errors.New("job not found")
	ErrJobNotReady = errors.New("job not completed yet")

	// Submission errors
	ErrTopicRequired = errors.New("topic is required")
	ErrNoKeywords    = errors.New("no keywords to process")
)
