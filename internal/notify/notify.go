// Package notify delivers formatted scan messages to a chat channel.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/launchwatch/internal/format"
	"github.com/sells-group/launchwatch/internal/resilience"
	"github.com/sells-group/launchwatch/pkg/telegram"
)

// Notifier sends one pre-formatted message.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// TelegramConfig configures a Telegram notifier.
type TelegramConfig struct {
	ChatID      string
	ParseMode   string
	MaxChars    int
	MinInterval time.Duration
	Retry       resilience.RetryConfig
}

// Telegram sends messages through the Bot API, one at a time, spaced at
// least MinInterval apart and retried on transient failures.
type Telegram struct {
	client  telegram.Client
	cfg     TelegramConfig
	limiter *rate.Limiter
}

// NewTelegram creates a Telegram notifier.
func NewTelegram(client telegram.Client, cfg TelegramConfig) *Telegram {
	if cfg.ParseMode == "" {
		cfg.ParseMode = telegram.ParseModeMarkdown
	}
	if cfg.MaxChars <= 0 || cfg.MaxChars > telegram.MaxMessageChars {
		cfg.MaxChars = telegram.MaxMessageChars
	}
	if cfg.Retry.OnRetry == nil {
		cfg.Retry.OnRetry = resilience.RetryLogger("telegram", "send_message")
	}

	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	return &Telegram{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Send delivers text, cut to the channel limit.
func (t *Telegram) Send(ctx context.Context, text string) error {
	text = format.TruncateLines(text, t.cfg.MaxChars)

	msg, err := resilience.DoVal(ctx, t.cfg.Retry, func(ctx context.Context) (*telegram.Message, error) {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "notify: wait for send slot")
		}
		return t.client.SendMessage(ctx, telegram.SendMessageRequest{
			ChatID:                t.cfg.ChatID,
			Text:                  text,
			ParseMode:             t.cfg.ParseMode,
			DisableWebPagePreview: true,
		})
	})
	if err != nil {
		return eris.Wrapf(err, "notify: send to chat %s", t.cfg.ChatID)
	}

	zap.L().Debug("notify: message sent",
		zap.String("chat_id", t.cfg.ChatID),
		zap.Int64("message_id", msg.MessageID),
		zap.Int("chars", len([]rune(text))),
	)
	return nil
}

// Writer prints messages instead of sending them. Used for dry runs.
type Writer struct {
	mu  sync.Mutex
	w   io.Writer
	n   int
	hdr *color.Color
}

// NewWriter creates a Writer notifier over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, hdr: color.New(color.FgCyan, color.Bold)}
}

// Send writes text preceded by a numbered divider.
func (w *Writer) Send(_ context.Context, text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.n++
	if _, err := w.hdr.Fprintf(w.w, "----- message %d -----\n", w.n); err != nil {
		return eris.Wrap(err, "notify: write divider")
	}
	if _, err := fmt.Fprintln(w.w, text); err != nil {
		return eris.Wrap(err, "notify: write message")
	}
	return nil
}

// Count returns the number of messages written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}
