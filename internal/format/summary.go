// Package format renders accepted posts as Telegram Markdown and groups the
// rendered summaries into size-bounded messages.
package format

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/launchwatch/internal/model"
)

const (
	isoLayout   = "2006-01-02T15:04:05"
	dateDisplay = "Jan 02, 2006"

	noName        = "N/A"
	noDescription = "No description provided."
)

// FormatError is returned when a post timestamp cannot be parsed.
type FormatError struct {
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format: unparseable timestamp %q: %v", e.Value, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// FormatDate renders a post timestamp as "Jan 02, 2006". The first 19
// characters are read as an ISO-8601 date-time, which drops any fractional
// seconds and zone suffix; the Twitter "Mon Jan 02 15:04:05 -0700 2006"
// layout is accepted as a fallback.
func FormatDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if len(s) >= len(isoLayout) {
		if t, err := time.Parse(isoLayout, s[:len(isoLayout)]); err == nil {
			return t.Format(dateDisplay), nil
		}
	}
	t, err := time.Parse(time.RubyDate, s)
	if err != nil {
		return "", &FormatError{Value: raw, Err: err}
	}
	return t.Format(dateDisplay), nil
}

// Summarize renders one post as a Markdown block. It never truncates.
func Summarize(it model.Item) (string, error) {
	date, err := FormatDate(it.CreatedAt)
	if err != nil {
		return "", err
	}
	return render(it, date), nil
}

// SummarizeOrRaw renders one post, falling back to the raw timestamp when it
// cannot be parsed. The returned error reports the fallback; the text is
// always usable.
func SummarizeOrRaw(it model.Item) (string, error) {
	date, err := FormatDate(it.CreatedAt)
	if err != nil {
		return render(it, EscapeMarkdown(it.CreatedAt)), err
	}
	return render(it, date), nil
}

func render(it model.Item, date string) string {
	name := it.Name
	if name == "" {
		name = noName
	}
	desc := it.Description
	if desc == "" {
		desc = noDescription
	}

	p := message.NewPrinter(language.English)
	var b strings.Builder
	b.WriteString(p.Sprintf("*%s* (%d followers)\n", strings.ReplaceAll(name, "*", ""), it.Followers))
	fmt.Fprintf(&b, "[View Tweet](%s)\n", it.Permalink())
	fmt.Fprintf(&b, "_About:_ %s\n", EscapeMarkdown(desc))
	fmt.Fprintf(&b, "_Tweeted:_ %s", date)
	return b.String()
}

var markdownEscaper = strings.NewReplacer(
	`_`, `\_`,
	`*`, `\*`,
	"`", "\\`",
	`[`, `\[`,
)

// EscapeMarkdown escapes the characters that legacy Telegram Markdown treats
// as entity delimiters. It applies outside entities only; text inside a bold
// span is emitted with its "*" removed instead.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
