package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/launchwatch/internal/config"
	"github.com/sells-group/launchwatch/internal/model"
	"github.com/sells-group/launchwatch/internal/scan"
	"github.com/sells-group/launchwatch/internal/store"
)

// fakeApifyServer answers the three endpoints a scan uses.
func fakeApifyServer(t *testing.T, items []map[string]any) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var inputs []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer apify_api_test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/acts/apify~twitter-scraper/runs":
			var in map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			inputs = append(inputs, in)
			_, _ = w.Write([]byte(`{"data":{"id":"run-42","status":"READY"}}`))
		case r.URL.Path == "/actor-runs/run-42":
			_, _ = w.Write([]byte(`{"data":{"id":"run-42","status":"SUCCEEDED","defaultDatasetId":"ds-7"}}`))
		case r.URL.Path == "/datasets/ds-7/items":
			_ = json.NewEncoder(w).Encode(items)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &inputs
}

func testConfig(apifyURL string) *config.Config {
	return &config.Config{
		Apify: config.ApifyConfig{
			Token:   "apify_api_test",
			BaseURL: apifyURL,
			ActorID: "apify/twitter-scraper",
		},
		Scan: config.ScanConfig{
			Keywords:   []string{"defi protocol", "IDO"},
			Since:      "2025-07-01",
			MaxResults: 50,
			Language:   "en",
		},
		Poll:   config.PollConfig{Interval: time.Millisecond, Timeout: 5 * time.Second},
		Notify: config.NotifyConfig{BatchSize: 2, MaxMessageChars: 4096, Header: true},
		Store:  config.StoreConfig{Driver: "none"},
	}
}

func TestBuildScanner_DryRunEndToEnd(t *testing.T) {
	items := []map[string]any{
		{"id": "1", "fullText": "Introducing Nebula DEX", "createdAt": "2025-07-02T10:00:00.000Z",
			"user": map[string]any{"screenName": "nebula", "name": "Nebula", "description": "Official", "followersCount": 12345}},
		{"id": "2", "fullText": "We are proud to announce our IDO", "createdAt": "Wed Jul 02 10:00:00 +0000 2025",
			"user": map[string]any{"screenName": "orbit", "name": "Orbit", "description": "Cross-chain liquidity", "followersCount": 800}},
		{"id": "3", "fullText": "launch day for my side project", "createdAt": "2025-07-02T10:00:00Z",
			"user": map[string]any{"screenName": "dev", "name": "Dev", "description": "Rust developer", "followersCount": 10}},
		{"id": "4", "fullText": "Now live on mainnet", "createdAt": "2025-07-03T10:00:00Z",
			"user": map[string]any{"screenName": "flux", "name": "Flux", "description": "", "followersCount": 99}},
	}
	srv, inputs := fakeApifyServer(t, items)

	var out bytes.Buffer
	s, err := buildScanner(testConfig(srv.URL), store.NopStore{}, true, &out, time.Now())
	require.NoError(t, err)

	res, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-42", res.JobID)
	assert.Equal(t, 4, res.Fetched)
	assert.Equal(t, 3, res.Accepted)
	// header + ceil(3/2) batches
	assert.Equal(t, 3, res.Messages)

	require.Len(t, *inputs, 1)
	in := (*inputs)[0]
	assert.Equal(t, []any{`"defi protocol" since:2025-07-01`, `"IDO" since:2025-07-01`}, in["searchTerms"])
	assert.EqualValues(t, 50, in["maxItems"])
	assert.Equal(t, true, in["addUserInfo"])

	printed := out.String()
	assert.Equal(t, 3, strings.Count(printed, "----- message"))
	assert.Contains(t, printed, "Found 3 potential launches since 2025-07-01.")
	assert.Contains(t, printed, "*Nebula* (12,345 followers)")
	assert.Contains(t, printed, "[View Tweet](https://x.com/nebula/status/1)")
	assert.Contains(t, printed, "_Tweeted:_ Jul 02, 2025")
	assert.Contains(t, printed, "No description provided.")
	assert.NotContains(t, printed, "Rust developer")
}

func TestBuildScanner_LookbackSince(t *testing.T) {
	srv, inputs := fakeApifyServer(t, nil)
	c := testConfig(srv.URL)
	c.Scan.Since = ""
	c.Scan.LookbackDays = 2

	var out bytes.Buffer
	now := time.Date(2025, 7, 10, 8, 0, 0, 0, time.UTC)
	s, err := buildScanner(c, nil, true, &out, now)
	require.NoError(t, err)

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Accepted)

	require.Len(t, *inputs, 1)
	assert.Contains(t, (*inputs)[0]["searchTerms"], `"IDO" since:2025-07-08`)
	assert.Contains(t, out.String(), "No new relevant project announcements found.")
}

func TestBuildScanner_BadSince(t *testing.T) {
	c := testConfig("http://127.0.0.1:0")
	c.Scan.Since = "01/07/2025"
	_, err := buildScanner(c, nil, true, &bytes.Buffer{}, time.Now())
	assert.Error(t, err)
}

func TestBuildScanner_RecordsRunInSQLite(t *testing.T) {
	srv, _ := fakeApifyServer(t, []map[string]any{
		{"id": "9", "fullText": "We present Lumen", "createdAt": "2025-07-05T00:00:00Z",
			"user": map[string]any{"screenName": "lumen", "name": "Lumen", "followersCount": 1}},
	})

	st, err := store.NewSQLite(t.TempDir() + "/runs.db")
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	s, err := buildScanner(testConfig(srv.URL), st, true, &bytes.Buffer{}, time.Now())
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)

	run, err := st.GetRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	assert.Equal(t, "run-42", run.JobID)
	require.NotNil(t, run.Result)
	assert.Equal(t, 1, run.Result.Accepted)
}

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	printResult(&buf, &scan.Result{Fetched: 10, Accepted: 4, Messages: 3, FailedSends: 1})
	assert.Contains(t, buf.String(), "fetched 10, accepted 4, sent 3 messages")
	assert.Contains(t, buf.String(), "(1 failed)")
}
