package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/launchwatch/internal/config"
	"github.com/sells-group/launchwatch/internal/store"
)

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run scans on a schedule",
	Long:  "Runs a scan on the configured cron schedule until interrupted. A tick is skipped while the previous scan is still running.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if f := cmd.Flags().Lookup("schedule"); f != nil && f.Changed {
			cfg.Watch.Schedule = f.Value.String()
		}
		if err := cfg.Validate(config.ModeScan); err != nil {
			return err
		}

		st := openHistory(ctx, cfg)
		defer st.Close() //nolint:errcheck

		immediate, _ := cmd.Flags().GetBool("now")
		return watch(ctx, cfg, st, immediate)
	},
}

func init() {
	watchCmd.Flags().String("schedule", "", "cron expression or descriptor (default from watch.schedule)")
	watchCmd.Flags().Bool("now", false, "run one scan immediately before waiting for the schedule")
	rootCmd.AddCommand(watchCmd)
}

// watch schedules scans and blocks until ctx is done, then waits for any
// running scan to return.
func watch(ctx context.Context, c *config.Config, st store.Store, immediate bool) error {
	sched, err := scheduleParser.Parse(c.Watch.Schedule)
	if err != nil {
		return eris.Wrapf(err, "watch: parse schedule %q", c.Watch.Schedule)
	}

	logger := cronLogger{log: zap.L().Sugar()}
	cr := cron.New(
		cron.WithParser(scheduleParser),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	job := cron.FuncJob(func() { scanTick(ctx, c, st) })
	cr.Schedule(sched, job)

	zap.L().Info("watch: started",
		zap.String("schedule", c.Watch.Schedule),
		zap.Time("next_run", sched.Next(time.Now())),
	)

	if immediate {
		scanTick(ctx, c, st)
	}

	cr.Start()
	<-ctx.Done()
	<-cr.Stop().Done()

	zap.L().Info("watch: stopped")
	return nil
}

func scanTick(ctx context.Context, c *config.Config, st store.Store) {
	if ctx.Err() != nil {
		return
	}
	s, err := buildScanner(c, st, false, nil, time.Now())
	if err != nil {
		zap.L().Error("watch: build scanner", zap.Error(err))
		return
	}
	// Scan errors are already logged and reported to the chat.
	_, _ = s.Run(ctx)
}

// cronLogger routes cron's logging through zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
