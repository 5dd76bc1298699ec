package scan

import (
	"context"
	"encoding/json"

	"github.com/sells-group/launchwatch/internal/resilience"
	"github.com/sells-group/launchwatch/pkg/apify"
)

// retryingClient retries the idempotent reads of an apify.Client. StartRun
// passes through untouched so a run is never submitted twice.
type retryingClient struct {
	apify.Client
	retry resilience.RetryConfig
}

// NewRetryingClient wraps c so GetRun and ListItems are retried on
// transient failures, sequentially.
func NewRetryingClient(c apify.Client, cfg resilience.RetryConfig) apify.Client {
	return &retryingClient{Client: c, retry: cfg}
}

func (c *retryingClient) GetRun(ctx context.Context, runID string) (*apify.RunInfo, error) {
	cfg := c.retry
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.RetryLogger("apify", "get_run")
	}
	return resilience.DoVal(ctx, cfg, func(ctx context.Context) (*apify.RunInfo, error) {
		return c.Client.GetRun(ctx, runID)
	})
}

func (c *retryingClient) ListItems(ctx context.Context, datasetID string, offset, limit int) ([]json.RawMessage, error) {
	cfg := c.retry
	if cfg.OnRetry == nil {
		cfg.OnRetry = resilience.RetryLogger("apify", "list_items")
	}
	return resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]json.RawMessage, error) {
		return c.Client.ListItems(ctx, datasetID, offset, limit)
	})
}
