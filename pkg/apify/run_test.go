package apify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
	}{
		{"READY", StatusRunning},
		{"RUNNING", StatusRunning},
		{"TIMING-OUT", StatusRunning},
		{"ABORTING", StatusRunning},
		{"", StatusRunning},
		{"SUCCEEDED", StatusSucceeded},
		{"succeeded", StatusSucceeded},
		{"FAILED", StatusFailed},
		{"TIMED-OUT", StatusTimedOut},
		{"TIMED_OUT", StatusTimedOut},
		{"ABORTED", StatusAborted},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStatus(tt.raw))
		})
	}
}

func TestJob_ObserveIsMonotonic(t *testing.T) {
	job := NewJob("run-1")
	assert.Equal(t, StatusRunning, job.Status)

	assert.True(t, job.Observe(RunInfo{Status: StatusRunning}))
	assert.Empty(t, job.DatasetID)

	assert.True(t, job.Observe(RunInfo{Status: StatusSucceeded, DatasetID: "ds1"}))
	assert.Equal(t, StatusSucceeded, job.Status)

	// Terminal jobs ignore later observations.
	assert.False(t, job.Observe(RunInfo{Status: StatusRunning, DatasetID: "ds2"}))
	assert.False(t, job.Observe(RunInfo{Status: StatusFailed, DatasetID: "ds3"}))
	assert.Equal(t, StatusSucceeded, job.Status)
	assert.Equal(t, "ds1", job.DatasetID)
}
