package apify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultPollInterval = 10 * time.Second
	defaultPollTimeout  = 10 * time.Minute
	defaultPageSize     = 1000
)

// PollOption configures polling behavior.
type PollOption func(*pollConfig)

type pollConfig struct {
	interval    time.Duration
	timeout     time.Duration
	maxAttempts int
	wait        func(ctx context.Context, d time.Duration) error
}

func defaultPollConfig() pollConfig {
	return pollConfig{
		interval: defaultPollInterval,
		timeout:  defaultPollTimeout,
		wait:     sleepCtx,
	}
}

// WithPollInterval overrides the fixed delay between status checks.
func WithPollInterval(d time.Duration) PollOption {
	return func(c *pollConfig) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithPollTimeout overrides the default timeout (applied only if the parent
// context has no deadline).
func WithPollTimeout(d time.Duration) PollOption {
	return func(c *pollConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxAttempts caps the number of status checks. Zero means no cap.
func WithMaxAttempts(n int) PollOption {
	return func(c *pollConfig) {
		if n >= 0 {
			c.maxAttempts = n
		}
	}
}

// WithWaitFunc replaces the delay between status checks. The function must
// return ctx.Err() once ctx is done.
func WithWaitFunc(wait func(ctx context.Context, d time.Duration) error) PollOption {
	return func(c *pollConfig) {
		if wait != nil {
			c.wait = wait
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// PollRun checks the run status until it is terminal. The first check is
// immediate; every non-terminal answer is followed by one fixed delay.
//
// SUCCEEDED returns the job with its dataset id, or MissingDatasetError.
// FAILED, TIMED_OUT and ABORTED return JobFailedError. Giving up locally
// returns TimeoutError.
func PollRun(ctx context.Context, client Client, runID string, opts ...PollOption) (*Job, error) {
	cfg := defaultPollConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	job := NewJob(runID)
	for attempt := 1; ; attempt++ {
		info, err := client.GetRun(ctx, runID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, &TimeoutError{RunID: runID, Attempts: attempt, Err: ctxErr}
			}
			return nil, eris.Wrapf(err, "apify: poll run %s", runID)
		}
		job.Observe(*info)

		if job.Status.Terminal() {
			break
		}
		if cfg.maxAttempts > 0 && attempt >= cfg.maxAttempts {
			return nil, &TimeoutError{RunID: runID, Attempts: attempt, Err: ErrMaxAttempts}
		}
		if err := cfg.wait(ctx, cfg.interval); err != nil {
			return nil, &TimeoutError{RunID: runID, Attempts: attempt, Err: err}
		}
	}

	switch job.Status {
	case StatusSucceeded:
		if job.DatasetID == "" {
			return nil, &MissingDatasetError{RunID: runID}
		}
		return job, nil
	default:
		return nil, &JobFailedError{RunID: runID, Status: job.Status}
	}
}

// FetchOption configures dataset paging.
type FetchOption func(*fetchConfig)

type fetchConfig struct {
	pageSize int
}

// WithPageSize overrides the number of items requested per page.
func WithPageSize(n int) FetchOption {
	return func(c *fetchConfig) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// FetchItems pages through a dataset until a short page or until maxItems
// items are collected. maxItems <= 0 means no ceiling.
func FetchItems(ctx context.Context, client Client, datasetID string, maxItems int, opts ...FetchOption) ([]json.RawMessage, error) {
	cfg := fetchConfig{pageSize: defaultPageSize}
	for _, opt := range opts {
		opt(&cfg)
	}

	var all []json.RawMessage
	for {
		size := cfg.pageSize
		if maxItems > 0 && maxItems-len(all) < size {
			size = maxItems - len(all)
		}

		page, err := client.ListItems(ctx, datasetID, len(all), size)
		if err != nil {
			return nil, eris.Wrapf(err, "apify: fetch dataset %s at offset %d", datasetID, len(all))
		}
		all = append(all, page...)

		if len(page) < size {
			return all, nil
		}
		if maxItems > 0 && len(all) >= maxItems {
			return all[:maxItems], nil
		}
	}
}
