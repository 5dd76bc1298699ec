// Package apify provides a client for the Apify actor API: start a run, poll
// it to completion and page through its default dataset.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Default base URL for the Apify v2 API.
const defaultBaseURL = "https://api.apify.com/v2"

// Client defines the Apify API operations used by the scanner.
type Client interface {
	StartRun(ctx context.Context, actorID string, input any) (string, error)
	GetRun(ctx context.Context, runID string) (*RunInfo, error)
	ListItems(ctx context.Context, datasetID string, offset, limit int) ([]json.RawMessage, error)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTokenInQuery sends the token as the ?token= query parameter instead of
// a bearer header.
func WithTokenInQuery() Option {
	return func(c *httpClient) {
		c.tokenInQuery = true
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	token        string
	baseURL      string
	tokenInQuery bool
	http         *http.Client
}

// NewClient creates a new Apify client.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// actorPath converts "user/actor" into the "user~actor" form used in URLs.
func actorPath(actorID string) string {
	return url.PathEscape(strings.ReplaceAll(actorID, "/", "~"))
}

func (c *httpClient) StartRun(ctx context.Context, actorID string, input any) (string, error) {
	body, err := c.post(ctx, "/acts/"+actorPath(actorID)+"/runs", input)
	if err != nil {
		return "", eris.Wrapf(err, "apify: start run of %s", actorID)
	}

	id, ok := FirstOf(body, runIDChain...)
	if !ok {
		return "", &SubmissionError{Reason: "no run id in response", Body: truncateBody(body)}
	}
	return id, nil
}

func (c *httpClient) GetRun(ctx context.Context, runID string) (*RunInfo, error) {
	body, err := c.get(ctx, "/actor-runs/"+url.PathEscape(runID), nil)
	if err != nil {
		return nil, eris.Wrapf(err, "apify: get run %s", runID)
	}

	raw, _ := FirstOf(body, runStatusChain...)
	datasetID, _ := FirstOf(body, datasetIDChain...)
	return &RunInfo{
		ID:        runID,
		Status:    ParseStatus(raw),
		RawStatus: raw,
		DatasetID: datasetID,
	}, nil
}

func (c *httpClient) ListItems(ctx context.Context, datasetID string, offset, limit int) ([]json.RawMessage, error) {
	q := url.Values{}
	q.Set("clean", "true")
	q.Set("format", "json")
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, "/datasets/"+url.PathEscape(datasetID)+"/items", q)
	if err != nil {
		return nil, eris.Wrapf(err, "apify: list items of dataset %s", datasetID)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, eris.Wrapf(err, "apify: decode items of dataset %s", datasetID)
	}
	return items, nil
}

func (c *httpClient) post(ctx context.Context, path string, body any) ([]byte, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path, nil), bytes.NewReader(buf))
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	return c.do(req)
}

func (c *httpClient) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, q), nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	c.authorize(req)

	return c.do(req)
}

func (c *httpClient) endpoint(path string, q url.Values) string {
	if c.tokenInQuery {
		if q == nil {
			q = url.Values{}
		}
		q.Set("token", c.token)
	}
	if len(q) == 0 {
		return c.baseURL + path
	}
	return c.baseURL + path + "?" + q.Encode()
}

func (c *httpClient) authorize(req *http.Request) {
	if !c.tokenInQuery {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *httpClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}
	return data, nil
}

// truncateBody keeps error messages readable when a proxy returns a page of HTML.
func truncateBody(b []byte) string {
	const maxLen = 512
	if len(b) <= maxLen {
		return string(b)
	}
	return fmt.Sprintf("%s... (%d bytes)", b[:maxLen], len(b))
}
