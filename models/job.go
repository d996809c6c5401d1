package models

import "time"

// JobStatus is the status string reported by the fine-tuning API.
type JobStatus string

const (
	JobStatusValidatingFiles JobStatus = "validating_files"
	JobStatusQueued          JobStatus = "queued"
	JobStatusRunning         JobStatus = "running"
	JobStatusSucceeded       JobStatus = "succeeded"
	JobStatusFailed          JobStatus = "failed"
	JobStatusCancelled       JobStatus = "cancelled"
)

// IsTerminal reports whether no further status changes are expected.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusSucceeded, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// FineTuneJob is a local snapshot of a remote fine-tuning job.
type FineTuneJob struct {
	ID             string    `json:"id"`
	Status         JobStatus `json:"status"`
	FineTunedModel string    `json:"fine_tuned_model,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// JobRecord is the persisted view of a fine-tuning job.
type JobRecord struct {
	JobID          string
	FileID         string
	BaseModel      string
	TrainingFile   string
	Status         JobStatus
	FineTunedModel string
	Error          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ScrapeRun is the persisted summary of one scrape pipeline run.
type ScrapeRun struct {
	RunID            string
	Model            string
	PagesScraped     int
	PagesFailed      int
	Examples         int
	PromptTokens     int64
	CompletionTokens int64
	Cost             float64
	OutputFile       string
	StartedAt        time.Time
	FinishedAt       time.Time
	Pages            []PageResult
}
