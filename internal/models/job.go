package models

// JobStatus is the lifecycle state of a BatchJob.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobError      JobStatus = "error"
)

// IsTerminal reports whether no further transition is allowed.
func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobError
}

// BatchJob is a status snapshot of one queued image.
type BatchJob struct {
	ID       string    `json:"id"`
	FileName string    `json:"fileName"`
	Status   JobStatus `json:"status"`
	Progress int       `json:"progress"`
	Error    string    `json:"error,omitempty"`
}
