package history

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/gxscan/gxscan/internal/logger"
)

// FetchTimeout bounds one history request; beyond it the fetch counts
// as failed and the previous cache entry, if any, stays in place.
const FetchTimeout = 10 * time.Second

const fetchMaxTries = 3

// Fetcher retrieves history series from the upstream HTTP API.
type Fetcher struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewFetcher creates a history fetcher against the given API base URL.
func NewFetcher(baseURL string, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: FetchTimeout},
		logger:  logger,
	}
}

// Fetch requests the history series for one token address, retrying
// transient failures with exponential backoff. The caller decides what
// to do with the result; a failed fetch never touches the cache.
func (f *Fetcher) Fetch(ctx context.Context, address string) ([]Point, error) {
	endpoint := fmt.Sprintf("%s/history?token=%s", f.baseURL, url.QueryEscape(address))
	log := logger.WithOperation(f.logger, "history_fetch").
		With(zap.String("token", address))

	operation := func() ([]Point, error) {
		return f.fetchOnce(ctx, endpoint)
	}

	notify := func(err error, wait time.Duration) {
		log.Debug("History fetch retry",
			zap.Duration("backoff", wait),
			zap.Error(err))
	}

	points, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(fetchMaxTries),
		backoff.WithNotify(notify))
	if err != nil {
		log.Debug("History fetch failed", zap.Error(err))
		return nil, fmt.Errorf("history fetch for %s: %w", address, err)
	}

	log.Debug("History fetch complete", zap.Int("points", len(points)))
	return points, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, endpoint string) ([]Point, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	var points []Point
	if err := json.NewDecoder(resp.Body).Decode(&points); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode history response: %w", err))
	}

	return points, nil
}
