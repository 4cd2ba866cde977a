package http

import (
	"context"
	"time"

	"github.com/claudehenchoz/gensi"
)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Ensure RetryingFetcher implements gensi.Fetcher.
var _ gensi.Fetcher = (*RetryingFetcher)(nil)

// RetryingFetcher wraps a Fetcher with exponential-backoff retries. Each
// failed attempt waits for the next delay in the list; the number of
// delays bounds the number of retries.
type RetryingFetcher struct {
	next   gensi.Fetcher
	delays []time.Duration
}

// NewRetryingFetcher creates a RetryingFetcher with the given delays,
// or DefaultRetryDelays when none are supplied.
func NewRetryingFetcher(next gensi.Fetcher, delays ...time.Duration) *RetryingFetcher {
	if len(delays) == 0 {
		delays = DefaultRetryDelays()
	}
	return &RetryingFetcher{next: next, delays: delays}
}

func (f *RetryingFetcher) Fetch(ctx context.Context, url string, purpose gensi.Purpose) (string, string, error) {
	var body, resolvedURL string
	err := f.retry(ctx, func() error {
		var err error
		body, resolvedURL, err = f.next.Fetch(ctx, url, purpose)
		return err
	})
	if err != nil {
		return "", "", err
	}
	return body, resolvedURL, nil
}

func (f *RetryingFetcher) FetchBinary(ctx context.Context, url string, purpose gensi.Purpose) ([]byte, string, error) {
	var body []byte
	var resolvedURL string
	err := f.retry(ctx, func() error {
		var err error
		body, resolvedURL, err = f.next.FetchBinary(ctx, url, purpose)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return body, resolvedURL, nil
}

func (f *RetryingFetcher) retry(ctx context.Context, attempt func() error) error {
	var lastErr error
	for i := 0; i <= len(f.delays); i++ {
		if err := attempt(); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if i == len(f.delays) {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.delays[i]):
		}
	}
	return lastErr
}
