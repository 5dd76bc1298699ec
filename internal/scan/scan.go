// Package scan runs one submit, poll, fetch, filter and notify cycle.
package scan

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/launchwatch/internal/filter"
	"github.com/sells-group/launchwatch/internal/format"
	"github.com/sells-group/launchwatch/internal/model"
	"github.com/sells-group/launchwatch/internal/notify"
	"github.com/sells-group/launchwatch/internal/store"
	"github.com/sells-group/launchwatch/pkg/apify"
)

// cleanupTimeout bounds the failure notice and history write made after the
// scan context may already be cancelled.
const cleanupTimeout = 30 * time.Second

// Options configures a Scanner.
type Options struct {
	ActorID      string
	Keywords     []string
	Since        *time.Time
	MaxResults   int
	Search       apify.SearchOptions
	PollInterval time.Duration
	PollTimeout  time.Duration
	MaxAttempts  int
	PageSize     int
	BatchSize    int
	MaxChars     int
	Header       bool
}

// Result summarizes a finished scan.
type Result struct {
	RunID        string
	JobID        string
	Fetched      int
	Accepted     int
	Messages     int
	FailedSends  int
	FormatErrors int
}

// Scanner wires the scrape client, filter, formatter and notifier together.
type Scanner struct {
	client   apify.Client
	notifier notify.Notifier
	filter   *filter.Filter
	store    store.Store
	opts     Options

	// pollWait replaces the poll delay in tests.
	pollWait func(ctx context.Context, d time.Duration) error
}

// New creates a Scanner. A nil store records nothing.
func New(client apify.Client, n notify.Notifier, f *filter.Filter, st store.Store, opts Options) *Scanner {
	if st == nil {
		st = store.NopStore{}
	}
	if f == nil {
		f = filter.New(nil, nil)
	}
	return &Scanner{client: client, notifier: n, filter: f, store: st, opts: opts}
}

// Run executes one scan. Pipeline errors are logged, reported best-effort
// to the chat, recorded, and returned unchanged. Failed batch sends are
// counted but do not fail the scan.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	queries, err := model.BuildQueries(s.opts.Keywords, s.opts.Since)
	if err != nil {
		s.reportFailure(ctx, nil, err)
		return nil, err
	}
	terms := model.SearchTerms(queries)

	res := &Result{}
	run, err := s.store.CreateRun(ctx, terms)
	if err != nil {
		zap.L().Warn("scan: could not record run", zap.Error(err))
	} else {
		res.RunID = run.ID
	}

	log := zap.L().With(zap.String("run_id", res.RunID))
	log.Info("scan: starting", zap.Int("queries", len(terms)), zap.String("actor", s.opts.ActorID))

	if err := s.fetchAndDeliver(ctx, log, terms, res); err != nil {
		log.Error("scan: failed", zap.Error(err))
		s.reportFailure(ctx, res, err)
		return res, err
	}

	if res.RunID != "" {
		if err := s.store.CompleteRun(ctx, res.RunID, toRunResult(res)); err != nil {
			log.Warn("scan: could not record completion", zap.Error(err))
		}
	}
	log.Info("scan: complete",
		zap.Int("fetched", res.Fetched),
		zap.Int("accepted", res.Accepted),
		zap.Int("messages", res.Messages),
		zap.Int("failed_sends", res.FailedSends),
	)
	return res, nil
}

func (s *Scanner) fetchAndDeliver(ctx context.Context, log *zap.Logger, terms []string, res *Result) error {
	input := apify.NewSearchInput(terms, s.opts.MaxResults, s.opts.Search)
	jobID, err := apify.Submit(ctx, s.client, s.opts.ActorID, input)
	if err != nil {
		return err
	}
	res.JobID = jobID
	log.Info("scan: run submitted", zap.String("job_id", jobID))
	if res.RunID != "" {
		if err := s.store.SetRunJob(ctx, res.RunID, jobID); err != nil {
			log.Warn("scan: could not record job id", zap.Error(err))
		}
	}

	job, err := apify.PollRun(ctx, s.client, jobID, s.pollOptions()...)
	if err != nil {
		return err
	}
	log.Info("scan: run finished", zap.String("job_id", jobID), zap.String("dataset_id", job.DatasetID))

	raws, err := apify.FetchItems(ctx, s.client, job.DatasetID, s.opts.MaxResults, apify.WithPageSize(s.opts.PageSize))
	if err != nil {
		return err
	}
	res.Fetched = len(raws)

	accepted := s.classify(log, model.DecodeItems(raws))
	res.Accepted = len(accepted)
	log.Info("scan: filtered", zap.Int("fetched", res.Fetched), zap.Int("accepted", res.Accepted))

	s.deliver(ctx, log, accepted, res)
	return nil
}

func (s *Scanner) classify(log *zap.Logger, items []model.Item) []model.Item {
	var accepted []model.Item
	for _, it := range items {
		d := s.filter.Classify(it)
		if !d.Accepted {
			log.Debug("scan: rejected item",
				zap.String("item_id", it.ID),
				zap.String("reason", string(d.Reason)),
				zap.Strings("matched", d.Matched),
			)
			continue
		}
		accepted = append(accepted, it)
	}
	return accepted
}

func (s *Scanner) deliver(ctx context.Context, log *zap.Logger, accepted []model.Item, res *Result) {
	if len(accepted) == 0 {
		s.send(ctx, log, format.NoResultsMessage, res)
		return
	}

	summaries := make([]string, 0, len(accepted))
	for _, it := range accepted {
		text, err := format.SummarizeOrRaw(it)
		if err != nil {
			res.FormatErrors++
			log.Warn("scan: using raw timestamp", zap.String("item_id", it.ID), zap.Error(err))
		}
		summaries = append(summaries, text)
	}

	if s.opts.Header {
		s.send(ctx, log, format.HeaderMessage(len(accepted), s.sinceLabel()), res)
	}

	batches := format.NewBatcher(s.opts.BatchSize, s.opts.MaxChars).Batch(summaries)
	for i, msg := range batches {
		ok := s.send(ctx, log, msg, res)
		log.Info("scan: sent batch", zap.Int("batch", i+1), zap.Int("of", len(batches)), zap.Bool("ok", ok))
	}
}

func (s *Scanner) send(ctx context.Context, log *zap.Logger, text string, res *Result) bool {
	if err := s.notifier.Send(ctx, text); err != nil {
		res.FailedSends++
		log.Error("scan: send failed", zap.Error(err))
		return false
	}
	res.Messages++
	return true
}

// reportFailure sends the failure notice and records the failed run. Errors
// from either are logged and dropped so the original error is returned.
func (s *Scanner) reportFailure(ctx context.Context, res *Result, cause error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if err := s.notifier.Send(ctx, format.FailureMessage(cause)); err != nil {
		zap.L().Warn("scan: failure notification not delivered", zap.Error(err))
	}
	if res != nil && res.RunID != "" {
		if err := s.store.FailRun(ctx, res.RunID, toRunResult(res), cause.Error()); err != nil {
			zap.L().Warn("scan: could not record failure", zap.Error(eris.Wrap(err, res.RunID)))
		}
	}
}

func (s *Scanner) pollOptions() []apify.PollOption {
	opts := []apify.PollOption{
		apify.WithPollInterval(s.opts.PollInterval),
		apify.WithPollTimeout(s.opts.PollTimeout),
		apify.WithMaxAttempts(s.opts.MaxAttempts),
	}
	if s.pollWait != nil {
		opts = append(opts, apify.WithWaitFunc(s.pollWait))
	}
	return opts
}

func (s *Scanner) sinceLabel() string {
	if s.opts.Since == nil {
		return ""
	}
	return s.opts.Since.Format(model.SinceLayout)
}

func toRunResult(r *Result) *model.RunResult {
	return &model.RunResult{
		Fetched:      r.Fetched,
		Accepted:     r.Accepted,
		Messages:     r.Messages,
		FailedSends:  r.FailedSends,
		FormatErrors: r.FormatErrors,
	}
}
