package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/launchwatch/internal/config"
	"github.com/sells-group/launchwatch/internal/filter"
	"github.com/sells-group/launchwatch/internal/notify"
	"github.com/sells-group/launchwatch/internal/resilience"
	"github.com/sells-group/launchwatch/internal/scan"
	"github.com/sells-group/launchwatch/internal/store"
	"github.com/sells-group/launchwatch/pkg/apify"
	"github.com/sells-group/launchwatch/pkg/telegram"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan and send the results",
	Long: "Submits the keyword search, waits for the run to finish, filters the results and posts batched summaries to Telegram. " +
		"With notify.header enabled a count message is sent before the batches.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		applyScanFlags(cmd, cfg)

		res, err := runScan(ctx, cfg, dryRun, os.Stdout)
		if err != nil {
			return eris.Wrap(err, "scan")
		}
		printResult(os.Stderr, res)
		return nil
	},
}

func init() {
	scanCmd.Flags().Bool("dry-run", false, "print messages to stdout instead of sending them")
	scanCmd.Flags().String("since", "", "only search posts on or after this date (YYYY-MM-DD)")
	scanCmd.Flags().Int("max-results", 0, "result ceiling for the search run")
	rootCmd.AddCommand(scanCmd)
}

// applyScanFlags copies explicitly set flags over the loaded config.
func applyScanFlags(cmd *cobra.Command, c *config.Config) {
	if f := cmd.Flags().Lookup("since"); f != nil && f.Changed {
		c.Scan.Since = f.Value.String()
		c.Scan.LookbackDays = 0
	}
	if f := cmd.Flags().Lookup("max-results"); f != nil && f.Changed {
		n, _ := cmd.Flags().GetInt("max-results")
		c.Scan.MaxResults = n
	}
}

// runScan validates c, opens run history and runs one scan. Dry runs print
// messages to out.
func runScan(ctx context.Context, c *config.Config, dryRun bool, out io.Writer) (*scan.Result, error) {
	mode := config.ModeScan
	if dryRun {
		mode = config.ModeDryRun
	}
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	st := openHistory(ctx, c)
	defer st.Close() //nolint:errcheck

	s, err := buildScanner(c, st, dryRun, out, time.Now())
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}

// buildScanner wires clients, filter, notifier and store from config. Dry
// runs print to out instead of calling Telegram.
func buildScanner(c *config.Config, st store.Store, dryRun bool, out io.Writer, now time.Time) (*scan.Scanner, error) {
	since, err := c.Scan.ResolveSince(now)
	if err != nil {
		return nil, eris.Wrap(err, "resolve since")
	}

	var apifyOpts []apify.Option
	if c.Apify.BaseURL != "" {
		apifyOpts = append(apifyOpts, apify.WithBaseURL(c.Apify.BaseURL))
	}
	if c.Apify.TokenInQuery {
		apifyOpts = append(apifyOpts, apify.WithTokenInQuery())
	}
	client := scan.NewRetryingClient(
		apify.NewClient(c.Apify.Token, apifyOpts...),
		resilience.FromSettings(c.Apify.MaxRetries, 0, 0),
	)

	var n notify.Notifier
	if dryRun {
		n = notify.NewWriter(out)
	} else {
		var botOpts []telegram.Option
		if c.Telegram.BaseURL != "" {
			botOpts = append(botOpts, telegram.WithBaseURL(c.Telegram.BaseURL))
		}
		bot := telegram.NewClient(c.Telegram.BotToken, botOpts...)
		n = notify.NewTelegram(bot, notify.TelegramConfig{
			ChatID:      c.Telegram.ChatID,
			ParseMode:   c.Telegram.ParseMode,
			MaxChars:    c.Notify.MaxMessageChars,
			MinInterval: c.Notify.MinInterval,
			Retry:       resilience.FromSettings(c.Notify.MaxRetries, 0, 0),
		})
	}

	f := filter.New(c.Filter.PersonalSignals, c.Filter.AnnouncementPhrases)

	return scan.New(client, n, f, st, scan.Options{
		ActorID:    c.Apify.ActorID,
		Keywords:   c.Scan.Keywords,
		Since:      since,
		MaxResults: c.Scan.MaxResults,
		Search: apify.SearchOptions{
			AddUserInfo:     true,
			IncludeReplies:  c.Scan.IncludeReplies,
			IncludeRetweets: c.Scan.IncludeRetweets,
			Language:        c.Scan.Language,
		},
		PollInterval: c.Poll.Interval,
		PollTimeout:  c.Poll.Timeout,
		MaxAttempts:  c.Poll.MaxAttempts,
		PageSize:     c.Apify.PageSize,
		BatchSize:    c.Notify.BatchSize,
		MaxChars:     c.Notify.MaxMessageChars,
		Header:       c.Notify.Header,
	}), nil
}

func printResult(w io.Writer, res *scan.Result) {
	c := color.New(color.FgGreen)
	if res.FailedSends > 0 {
		c = color.New(color.FgYellow)
	}
	_, _ = c.Fprintf(w, "scan complete: fetched %d, accepted %d, sent %d messages", res.Fetched, res.Accepted, res.Messages)
	if res.FailedSends > 0 {
		_, _ = c.Fprintf(w, " (%d failed)", res.FailedSends)
	}
	_, _ = fmt.Fprintln(w)
}
