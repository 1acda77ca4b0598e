package model

import "time"

// JobStatus tracks a document's position in the ingestion ledger.
type JobStatus string

const (
	JobQueued  JobStatus = "QUEUED"
	JobRunning JobStatus = "RUNNING"
	JobDone    JobStatus = "DONE"
	JobSkipped JobStatus = "SKIPPED"
	JobFlagged JobStatus = "FLAGGED"
	JobError   JobStatus = "ERROR"
)

// Job is one ledger row. Registration is at-most-once per file hash; retry is
// an explicit status reset back to QUEUED.
type Job struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	FileHash  string    `json:"file_hash"`
	Status    JobStatus `json:"status"`
	DocID     string    `json:"doc_id,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
