package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_SearchTerm(t *testing.T) {
	t.Parallel()

	since := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"with since", Query{Keyword: "defi protocol", Since: &since}, `"defi protocol" since:2025-07-01`},
		{"without since", Query{Keyword: "IDO"}, `"IDO"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.query.SearchTerm())
		})
	}
}

func TestNewQuery_RejectsBlank(t *testing.T) {
	t.Parallel()

	_, err := NewQuery("   ", nil)
	require.Error(t, err)

	q, err := NewQuery("  launch ", nil)
	require.NoError(t, err)
	assert.Equal(t, "launch", q.Keyword)
}

func TestBuildQueries(t *testing.T) {
	t.Parallel()

	since, err := ParseSince("2025-07-01")
	require.NoError(t, err)

	qs, err := BuildQueries([]string{"defi protocol", "dex aggregator"}, since)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`"defi protocol" since:2025-07-01`,
		`"dex aggregator" since:2025-07-01`,
	}, SearchTerms(qs))

	_, err = BuildQueries(nil, since)
	require.Error(t, err)

	_, err = BuildQueries([]string{"ok", ""}, since)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keyword 1")
}

func TestParseSince(t *testing.T) {
	t.Parallel()

	got, err := ParseSince("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseSince("07/01/2025")
	require.Error(t, err)
}

func TestDecodeItem_ScraperLayout(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"id": "1810000000000000001",
		"fullText": "We are proud to announce our launch",
		"createdAt": "2025-07-01T10:00:00.000Z",
		"user": {
			"screenName": "alice",
			"name": "Alice Protocol",
			"description": "Building the future",
			"followersCount": 1234
		}
	}`)

	it := DecodeItem(raw)
	assert.Equal(t, "1810000000000000001", it.ID)
	assert.Equal(t, "alice", it.Handle)
	assert.Equal(t, "Alice Protocol", it.Name)
	assert.Equal(t, "Building the future", it.Description)
	assert.Equal(t, int64(1234), it.Followers)
	assert.Equal(t, "We are proud to announce our launch", it.Text)
	assert.Equal(t, "2025-07-01T10:00:00.000Z", it.CreatedAt)
	assert.Equal(t, "https://x.com/alice/status/1810000000000000001", it.Permalink())
}

func TestDecodeItem_AuthorLayout(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"id": 123,
		"text": "Now live on mainnet",
		"createdAt": "Tue Jul 01 10:00:00 +0000 2025",
		"author": {"userName": "bob", "name": "Bob DEX", "description": null, "followers": "42"}
	}`)

	it := DecodeItem(raw)
	assert.Equal(t, "123", it.ID)
	assert.Equal(t, "bob", it.Handle)
	assert.Equal(t, "Bob DEX", it.Name)
	assert.Empty(t, it.Description)
	assert.Equal(t, int64(42), it.Followers)
	assert.Equal(t, "Now live on mainnet", it.Text)
}

func TestDecodeItem_MissingFields(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Item{}, DecodeItem([]byte(`{}`)))
	assert.Equal(t, Item{}, DecodeItem([]byte(`not json`)))
}

func TestDecodeItems_PreservesOrder(t *testing.T) {
	t.Parallel()

	raws := []json.RawMessage{
		json.RawMessage(`{"id":"1"}`),
		json.RawMessage(`{"id":"2"}`),
	}
	items := DecodeItems(raws)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "2", items[1].ID)
}

func TestRunStatusValues(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "running", string(RunStatusRunning))
	assert.Equal(t, "complete", string(RunStatusComplete))
	assert.Equal(t, "failed", string(RunStatusFailed))
}
