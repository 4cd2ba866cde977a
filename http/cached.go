package http

import (
	"context"

	"github.com/claudehenchoz/gensi"
)

// Ensure CachedFetcher implements gensi.Fetcher at compile time.
var _ gensi.Fetcher = (*CachedFetcher)(nil)

// CachedFetcher wraps a Fetcher with the purpose-aware cache policy:
// every purpose except index reads from and writes through the cache;
// index fetches bypass it in both directions. A nil cache makes the
// wrapper a pass-through.
//
// On a hit the stored resolved URL is returned with the payload, so
// cache hits are indistinguishable from fresh fetches to callers.
type CachedFetcher struct {
	next  gensi.Fetcher
	cache gensi.Cache
}

// NewCachedFetcher creates a CachedFetcher around next.
func NewCachedFetcher(next gensi.Fetcher, cache gensi.Cache) *CachedFetcher {
	return &CachedFetcher{next: next, cache: cache}
}

// Fetch retrieves text content, consulting the cache when the purpose
// allows it.
func (f *CachedFetcher) Fetch(ctx context.Context, url string, purpose gensi.Purpose) (string, string, error) {
	if f.useCache(purpose) {
		if entry, ok := f.cache.Get(ctx, url, gensi.CacheText); ok {
			return string(entry.Payload), entry.ResolvedURL, nil
		}
	}

	body, resolved, err := f.next.Fetch(ctx, url, purpose)
	if err != nil {
		return "", "", err
	}

	if f.useCache(purpose) {
		f.cache.Set(ctx, &gensi.CacheEntry{
			URL:         url,
			ResolvedURL: resolved,
			Payload:     []byte(body),
			Kind:        gensi.CacheText,
		})
	}

	return body, resolved, nil
}

// FetchBinary retrieves binary content, consulting the cache when the
// purpose allows it.
func (f *CachedFetcher) FetchBinary(ctx context.Context, url string, purpose gensi.Purpose) ([]byte, string, error) {
	if f.useCache(purpose) {
		if entry, ok := f.cache.Get(ctx, url, gensi.CacheBinary); ok {
			return entry.Payload, entry.ResolvedURL, nil
		}
	}

	body, resolved, err := f.next.FetchBinary(ctx, url, purpose)
	if err != nil {
		return nil, "", err
	}

	if f.useCache(purpose) {
		f.cache.Set(ctx, &gensi.CacheEntry{
			URL:         url,
			ResolvedURL: resolved,
			Payload:     body,
			Kind:        gensi.CacheBinary,
		})
	}

	return body, resolved, nil
}

func (f *CachedFetcher) useCache(purpose gensi.Purpose) bool {
	return f.cache != nil && purpose.Cacheable()
}
