package apify

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrMaxAttempts is the cause of a TimeoutError raised by the poll attempt cap.
var ErrMaxAttempts = eris.New("apify: poll attempt cap reached")

// TransportError is returned when Apify responds with a non-2xx status.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("apify: HTTP %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus reports the status code for retry classification.
func (e *TransportError) HTTPStatus() int { return e.StatusCode }

// SubmissionError is returned when a run cannot be started: invalid input,
// a failed start request (Err holds the TransportError) or a response without
// a recognisable run id.
type SubmissionError struct {
	Reason string
	Body   string
	Err    error
}

func (e *SubmissionError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("apify: submit run: %s: %v", e.Reason, e.Err)
	case e.Body != "":
		return fmt.Sprintf("apify: submit run: %s: %s", e.Reason, e.Body)
	default:
		return "apify: submit run: " + e.Reason
	}
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// MissingDatasetError is returned when a run succeeded but its record has no
// default dataset.
type MissingDatasetError struct {
	RunID string
}

func (e *MissingDatasetError) Error() string {
	return fmt.Sprintf("apify: run %s succeeded without a dataset", e.RunID)
}

// JobFailedError is returned when a run ends in FAILED, TIMED_OUT or ABORTED.
type JobFailedError struct {
	RunID  string
	Status Status
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("apify: run %s finished with status %s", e.RunID, e.Status)
}

// TimeoutError is returned when polling gives up locally (deadline, attempt
// cap or cancellation). It is unrelated to the remote TIMED_OUT status.
type TimeoutError struct {
	RunID    string
	Attempts int
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("apify: gave up polling run %s after %d attempts: %v", e.RunID, e.Attempts, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}
