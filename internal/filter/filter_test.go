package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/launchwatch/internal/model"
)

func TestFilter_Classify(t *testing.T) {
	t.Parallel()

	f := New(nil, nil)
	tests := []struct {
		name   string
		item   model.Item
		accept bool
		reason Reason
	}{
		{
			name:   "announcement from org",
			item:   model.Item{Description: "Building the future", Text: "We are proud to announce launch"},
			accept: true,
			reason: ReasonAnnouncement,
		},
		{
			name:   "case insensitive body",
			item:   model.Item{Description: "DeFi protocol", Text: "Mainnet is NOW LIVE"},
			accept: true,
			reason: ReasonAnnouncement,
		},
		{
			name:   "personal signal wins over announcement",
			item:   model.Item{Description: "Solidity Developer and dad", Text: "Introducing my launch"},
			reason: ReasonPersonalAccount,
		},
		{
			name:   "signal matched as substring",
			item:   model.Item{Description: "Crypto TRADERS hub", Text: "launching soon"},
			reason: ReasonPersonalAccount,
		},
		{
			name:   "no phrase",
			item:   model.Item{Description: "DEX aggregator", Text: "gm"},
			reason: ReasonNoAnnouncement,
		},
		{
			name:   "missing description and body",
			item:   model.Item{},
			reason: ReasonNoAnnouncement,
		},
		{
			name:   "missing description only",
			item:   model.Item{Text: "We present v2"},
			accept: true,
			reason: ReasonAnnouncement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := f.Classify(tt.item)
			assert.Equal(t, tt.accept, d.Accepted)
			assert.Equal(t, tt.reason, d.Reason)
			assert.Equal(t, tt.accept, f.Accept(tt.item))
		})
	}
}

func TestFilter_PersonalSignalAlwaysRejects(t *testing.T) {
	t.Parallel()

	f := New(nil, nil)
	for _, sig := range DefaultPersonalSignals {
		for _, phrase := range DefaultAnnouncementPhrases {
			it := model.Item{Description: "I am a " + strings.ToUpper(sig), Text: phrase}
			assert.False(t, f.Accept(it), "signal %q with phrase %q", sig, phrase)
		}
	}
}

func TestFilter_AcceptedBodyContainsPhrase(t *testing.T) {
	t.Parallel()

	f := New(nil, nil)
	bodies := []string{
		"Introducing the fastest DEX",
		"we created a new vault",
		"Token sale LAUNCHES today",
		"nothing to see here",
		"",
	}
	for _, b := range bodies {
		it := model.Item{Description: "Official account", Text: b}
		if !f.Accept(it) {
			continue
		}
		lower := strings.ToLower(b)
		found := false
		for _, p := range DefaultAnnouncementPhrases {
			if strings.Contains(lower, p) {
				found = true
				break
			}
		}
		assert.True(t, found, "accepted body %q has no phrase", b)
	}
}

func TestFilter_Partition(t *testing.T) {
	t.Parallel()

	f := New([]string{"student"}, []string{"launch"})
	items := []model.Item{
		{ID: "1", Text: "launch day"},
		{ID: "2", Description: "student", Text: "launch day"},
		{ID: "3", Text: "hello"},
		{ID: "4", Text: "LAUNCH"},
	}

	accepted, rejected := f.Partition(items)
	assert.Equal(t, []string{"1", "4"}, ids(accepted))
	assert.Equal(t, []string{"2", "3"}, ids(rejected))
}

func TestFilter_EmptyPhraseListAcceptsNothing(t *testing.T) {
	t.Parallel()

	f := New([]string{}, []string{})
	assert.False(t, f.Accept(model.Item{Text: "launch"}))
}

func TestMatcher(t *testing.T) {
	t.Parallel()

	m := NewMatcher([]string{" Now Live ", "launch", "", "LAUNCH"})
	assert.Equal(t, []string{"now live", "launch"}, m.Terms())
	assert.Equal(t, []string{"now live", "launch"}, m.Matches("The launch is now live!"))
	assert.True(t, m.Contains("relaunching"))
	assert.False(t, m.Contains(""))
	assert.Nil(t, NewMatcher(nil).Matches("launch"))
}

func ids(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
