package models

// JobStatus is the lifecycle state of a classification job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// IsTerminal reports whether no further transition can leave this status.
func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobFailed
}

// JobProgress is the poll view of a job.
type JobProgress struct {
	Status         JobStatus `json:"status"`
	Progress       int       `json:"progress"`
	Total          int       `json:"total"`
	CurrentKeyword string    `json:"current_keyword"`
	Percentage     float64   `json:"percentage"`
	Error          string    `json:"error,omitempty"`
}

// JobResults is the result view of a completed job.
type JobResults struct {
	Status       JobStatus  `json:"status"`
	Statistics   Statistics `json:"statistics"`
	AcceptedFile string     `json:"accepted_file"`
	RejectedFile string     `json:"rejected_file"`
}
