// Package telegram provides a minimal client for the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL = "https://api.telegram.org"

	// MaxMessageChars is the Bot API limit on message text length.
	MaxMessageChars = 4096

	ParseModeMarkdown   = "Markdown"
	ParseModeMarkdownV2 = "MarkdownV2"
	ParseModeHTML       = "HTML"
)

// Client defines the Bot API operations used for notifications.
type Client interface {
	SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error)
}

// SendMessageRequest is the body for POST /bot<token>/sendMessage.
type SendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

// Message is the subset of the sent message we keep.
type Message struct {
	MessageID int64 `json:"message_id"`
	Date      int64 `json:"date"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Parameters  struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// APIError is returned when the Bot API rejects a request.
type APIError struct {
	StatusCode  int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: HTTP %d: %s", e.StatusCode, e.Description)
}

// HTTPStatus reports the status code for retry classification.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// RetryAfterHint reports the flood-wait delay requested by the server.
func (e *APIError) RetryAfterHint() time.Duration { return e.RetryAfter }

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

// httpClient implements Client using net/http.
type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Bot API client.
func NewClient(botToken string, opts ...Option) Client {
	c := &httpClient{
		token:   botToken,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error) {
	var msg Message
	if err := c.call(ctx, "sendMessage", req, &msg); err != nil {
		return nil, eris.Wrap(err, "telegram: send message")
	}
	return &msg, nil
}

func (c *httpClient) call(ctx context.Context, method string, body any, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// The URL carries the bot token; keep it out of logs.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			uerr.URL = strings.ReplaceAll(uerr.URL, c.token, "<redacted>")
		}
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	var ar apiResponse
	if err := json.Unmarshal(data, &ar); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode, Description: string(data)}
		}
		return eris.Wrap(err, "decode response")
	}

	if !ar.OK || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code := resp.StatusCode
		if ar.ErrorCode != 0 {
			code = ar.ErrorCode
		}
		return &APIError{
			StatusCode:  code,
			Description: ar.Description,
			RetryAfter:  time.Duration(ar.Parameters.RetryAfter) * time.Second,
		}
	}

	if out != nil && len(ar.Result) > 0 {
		if err := json.Unmarshal(ar.Result, out); err != nil {
			return eris.Wrap(err, "decode result")
		}
	}
	return nil
}
