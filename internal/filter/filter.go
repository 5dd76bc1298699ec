// Package filter decides whether a scraped post is a project announcement
// rather than a personal account's post.
package filter

import (
	"github.com/sells-group/launchwatch/internal/model"
)

// DefaultPersonalSignals are description words that mark an individual account.
var DefaultPersonalSignals = []string{
	"developer",
	"enthusiast",
	"student",
	"investor",
	"trader",
	"father",
	"mother",
	"personal",
	"author",
}

// DefaultAnnouncementPhrases are body phrases that mark a launch or announcement.
var DefaultAnnouncementPhrases = []string{
	"launch",
	"introducing",
	"we are proud to announce",
	"now live",
	"we present",
	"created",
}

// Reason explains a filter decision.
type Reason string

const (
	ReasonPersonalAccount Reason = "personal_account"
	ReasonNoAnnouncement  Reason = "no_announcement"
	ReasonAnnouncement    Reason = "announcement"
)

// Decision is the outcome of classifying one item.
type Decision struct {
	Accepted bool
	Reason   Reason
	Matched  []string
}

// Filter classifies items by substring matching over the author description
// and post body. It is safe for concurrent use.
type Filter struct {
	signals *Matcher
	phrases *Matcher
}

// New creates a Filter. Nil lists fall back to the defaults.
func New(signals, phrases []string) *Filter {
	if signals == nil {
		signals = DefaultPersonalSignals
	}
	if phrases == nil {
		phrases = DefaultAnnouncementPhrases
	}
	return &Filter{
		signals: NewMatcher(signals),
		phrases: NewMatcher(phrases),
	}
}

// Classify rejects an item whose description contains any personal signal,
// and otherwise accepts it only if its body contains an announcement phrase.
func (f *Filter) Classify(it model.Item) Decision {
	if hits := f.signals.Matches(it.Description); len(hits) > 0 {
		return Decision{Reason: ReasonPersonalAccount, Matched: hits}
	}
	if hits := f.phrases.Matches(it.Text); len(hits) > 0 {
		return Decision{Accepted: true, Reason: ReasonAnnouncement, Matched: hits}
	}
	return Decision{Reason: ReasonNoAnnouncement}
}

// Accept reports whether the item is a project announcement.
func (f *Filter) Accept(it model.Item) bool {
	return f.Classify(it).Accepted
}

// Partition splits items into accepted and rejected, preserving input order.
func (f *Filter) Partition(items []model.Item) (accepted, rejected []model.Item) {
	for _, it := range items {
		if f.Accept(it) {
			accepted = append(accepted, it)
		} else {
			rejected = append(rejected, it)
		}
	}
	return accepted, rejected
}
