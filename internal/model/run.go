package model

import "time"

// RunStatus is the lifecycle state of a recorded scan.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is the audit record of one scan invocation.
type Run struct {
	ID        string     `json:"id"`
	Status    RunStatus  `json:"status"`
	Queries   []string   `json:"queries"`
	JobID     string     `json:"job_id,omitempty"`
	Result    *RunResult `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult holds the counts of a finished scan.
type RunResult struct {
	Fetched      int `json:"fetched"`
	Accepted     int `json:"accepted"`
	Messages     int `json:"messages"`
	FailedSends  int `json:"failed_sends"`
	FormatErrors int `json:"format_errors"`
}
