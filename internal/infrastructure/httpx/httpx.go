package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrDecode marks a 2xx response whose body was not valid JSON. Decode
// failures are never retried: the upstream answered, it just answered junk.
var ErrDecode = errors.New("decode response body")

const (
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = 1 * time.Second
	DefaultTimeout      = 10 * time.Second
)

// Client issues bearer-authenticated GETs with bounded exponential-backoff
// retry. With the defaults a failing endpoint is tried 3 times with waits of
// 1s and 2s in between. Waits are timer-based and honor ctx cancellation.
type Client struct {
	HTTP         *http.Client
	MaxAttempts  int
	InitialDelay time.Duration
}

func New(timeout time.Duration, maxAttempts int, initialDelay time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		HTTP:         &http.Client{Timeout: timeout},
		MaxAttempts:  maxAttempts,
		InitialDelay: initialDelay,
	}
}

// GetJSON fetches url and decodes the JSON response into out. Any transport
// error or non-2xx status counts as a retryable failure; exhausting the
// attempts returns the last error.
func (c *Client) GetJSON(ctx context.Context, url, token string, out any) error {
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	delay := c.InitialDelay
	if delay <= 0 {
		delay = DefaultInitialDelay
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = delay
	exp.Multiplier = 2
	exp.RandomizationFactor = 0
	exp.MaxInterval = delay << uint(attempts)
	exp.MaxElapsedTime = 0 // attempt count, not elapsed time, bounds the retries

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("do request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("status %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("%w: %v", ErrDecode, err))
		}
		return nil
	}
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx))
}
