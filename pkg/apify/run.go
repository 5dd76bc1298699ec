package apify

import "strings"

// Status is the normalised lifecycle state of an actor run.
type Status string

const (
	StatusRunning   Status = "RUNNING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
	StatusTimedOut  Status = "TIMED_OUT"
	StatusAborted   Status = "ABORTED"
)

// ParseStatus maps a raw Apify status string onto Status. Transitional
// states (READY, TIMING-OUT, ABORTING) and unknown values count as running.
func ParseStatus(raw string) Status {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "SUCCEEDED":
		return StatusSucceeded
	case "FAILED":
		return StatusFailed
	case "TIMED-OUT", "TIMED_OUT":
		return StatusTimedOut
	case "ABORTED":
		return StatusAborted
	default:
		return StatusRunning
	}
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s != StatusRunning
}

// RunInfo is one observation of a run record.
type RunInfo struct {
	ID        string
	Status    Status
	RawStatus string
	DatasetID string
}

// Job tracks a submitted run across status observations.
type Job struct {
	ID        string
	Status    Status
	DatasetID string
}

// NewJob returns a job in the initial RUNNING state.
func NewJob(id string) *Job {
	return &Job{ID: id, Status: StatusRunning}
}

// Observe applies a fetched status. Once the job is terminal it is frozen and
// Observe returns false.
func (j *Job) Observe(info RunInfo) bool {
	if j.Status.Terminal() {
		return false
	}
	j.Status = info.Status
	if info.Status.Terminal() {
		j.DatasetID = info.DatasetID
	}
	return true
}
