package gensi

import (
	"context"
	"time"
)

// Purpose classifies a fetch for the cache-decision policy. Every purpose
// except PurposeIndex is cacheable; index fetches always bypass the cache
// in both directions because listing pages are expected to change between
// runs.
type Purpose string

// Fetch purposes.
const (
	PurposeCover   Purpose = "cover"
	PurposeIndex   Purpose = "index"
	PurposeArticle Purpose = "article"
	PurposeImage   Purpose = "image"
)

// Cacheable reports whether fetches for this purpose may consult and
// populate the cache.
func (p Purpose) Cacheable() bool {
	return p != PurposeIndex
}

// CacheKind distinguishes text and binary payloads in the cache. The same
// URL may hold one entry of each kind; they never collide.
type CacheKind string

// Cache kinds.
const (
	CacheText   CacheKind = "text"
	CacheBinary CacheKind = "binary"
)

// Fetcher retrieves remote content. Implementations must be safe for
// concurrent use: a single fetcher is shared across the whole run.
type Fetcher interface {
	// Fetch retrieves text content. It returns the body and the resolved
	// URL after redirects. The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string, purpose Purpose) (body string, resolvedURL string, err error)

	// FetchBinary retrieves binary content.
	FetchBinary(ctx context.Context, url string, purpose Purpose) (body []byte, resolvedURL string, err error)
}

// CacheEntry is one stored fetch result. The resolved URL travels with
// the payload so repeated cache hits are indistinguishable from fresh
// fetches to callers.
type CacheEntry struct {
	URL         string
	ResolvedURL string
	Payload     []byte
	Kind        CacheKind
	CachedAt    time.Time
}

// CacheStats describes the cache for operational tooling.
type CacheStats struct {
	EntryCount int
	SizeBytes  int64
}

// Cache is a durable key/value store for fetch results with per-entry
// expiry. Expiry is enforced by the store, not by callers. Implementations
// must support concurrent use with per-key atomicity; no cross-key
// guarantees are required.
//
// Get returns ok=false on a miss. Caching is a performance optimization,
// never a correctness dependency: implementations degrade read failures
// to misses and write failures to no-ops rather than returning errors.
type Cache interface {
	Get(ctx context.Context, url string, kind CacheKind) (entry *CacheEntry, ok bool)
	Set(ctx context.Context, entry *CacheEntry)
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (*CacheStats, error)
}
