package format

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultBatchSize is the number of summaries per message.
	DefaultBatchSize = 5
	// DefaultMaxChars matches the Telegram message text limit.
	DefaultMaxChars = 4096
	// Separator joins summaries within one message.
	Separator = "\n\n---\n\n"
)

// Batcher groups summaries into messages of at most Size summaries and at
// most MaxChars runes.
type Batcher struct {
	Size     int
	MaxChars int
}

// NewBatcher returns a Batcher, using the defaults for non-positive values.
func NewBatcher(size, maxChars int) Batcher {
	if size <= 0 {
		size = DefaultBatchSize
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return Batcher{Size: size, MaxChars: maxChars}
}

// Batch joins summaries in order. A message is closed early when the next
// summary would push it past MaxChars; a lone summary longer than MaxChars is
// truncated.
func (b Batcher) Batch(summaries []string) []string {
	b = NewBatcher(b.Size, b.MaxChars)
	sepLen := utf8.RuneCountInString(Separator)

	var out, cur []string
	curLen := 0
	flush := func() {
		if len(cur) == 0 {
			return
		}
		out = append(out, strings.Join(cur, Separator))
		cur, curLen = nil, 0
	}

	for _, s := range summaries {
		s = TruncateLines(s, b.MaxChars)
		n := utf8.RuneCountInString(s)
		if len(cur) > 0 && (len(cur) >= b.Size || curLen+sepLen+n > b.MaxChars) {
			flush()
		}
		if len(cur) > 0 {
			curLen += sepLen
		}
		cur = append(cur, s)
		curLen += n
	}
	flush()
	return out
}

// Truncate cuts s to at most limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	i := 0
	for pos := range s {
		if i == limit {
			return s[:pos]
		}
		i++
	}
	return s
}

// TruncateLines cuts s to at most limit runes, dropping any partial last line
// so Markdown entities opened on that line are not left unclosed. Text with
// no line break inside the limit falls back to Truncate.
func TruncateLines(s string, limit int) string {
	cut := Truncate(s, limit)
	if len(cut) == len(s) {
		return s
	}
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		return strings.TrimRight(cut[:i], "\n")
	}
	return cut
}
