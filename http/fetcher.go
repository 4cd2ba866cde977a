// Package http provides the network fetch layer: a plain HTTP fetcher, a
// per-domain rate limiter, and a cache-aware wrapper that applies the
// purpose-based cache policy.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/claudehenchoz/gensi"
)

// DefaultFetchTimeout is the default per-fetch timeout.
const DefaultFetchTimeout = 30 * time.Second

// DefaultUserAgent is sent with every request. Some listing servers
// reject the Go default agent outright.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36"

// Ensure Fetcher implements gensi.Fetcher at compile time.
var _ gensi.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves remote content over HTTP. The underlying client is
// shared and safe for concurrent use across the whole run; timeouts apply
// per fetch and a timed-out fetch fails like any other.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	limiter   *DomainLimiter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-fetch timeout.
// Defaults to DefaultFetchTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithLimiter rate-limits requests per target domain.
func WithLimiter(l *DomainLimiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// NewFetcher creates a new HTTP fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves text content from the URL. It returns the body and the
// resolved URL after redirects.
func (f *Fetcher) Fetch(ctx context.Context, url string, purpose gensi.Purpose) (string, string, error) {
	body, resolved, err := f.get(ctx, url)
	if err != nil {
		return "", "", err
	}
	return string(body), resolved, nil
}

// FetchBinary retrieves binary content from the URL.
func (f *Fetcher) FetchBinary(ctx context.Context, url string, purpose gensi.Purpose) ([]byte, string, error) {
	return f.get(ctx, url)
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", gensi.Errorf(gensi.EFETCH, "invalid URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, req.URL.Host); err != nil {
			return nil, "", gensi.Errorf(gensi.EFETCH, "rate limit wait for %s: %v", req.URL.Host, err)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", gensi.Errorf(gensi.EFETCH, "failed to fetch %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", gensi.Errorf(gensi.EFETCH, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", gensi.Errorf(gensi.EFETCH, "failed to read %s: %v", url, err)
	}

	// resp.Request carries the final request in the redirect chain.
	return body, resp.Request.URL.String(), nil
}
