// Package mock provides mock implementations of gensi interfaces for
// testing.
package mock

import (
	"context"

	"github.com/claudehenchoz/gensi"
)

var _ gensi.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of gensi.Fetcher.
type Fetcher struct {
	FetchFn       func(ctx context.Context, url string, purpose gensi.Purpose) (string, string, error)
	FetchBinaryFn func(ctx context.Context, url string, purpose gensi.Purpose) ([]byte, string, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string, purpose gensi.Purpose) (string, string, error) {
	return f.FetchFn(ctx, url, purpose)
}

func (f *Fetcher) FetchBinary(ctx context.Context, url string, purpose gensi.Purpose) ([]byte, string, error) {
	return f.FetchBinaryFn(ctx, url, purpose)
}

var _ gensi.Cache = (*Cache)(nil)

// Cache is an in-memory mock implementation of gensi.Cache. The zero
// value is usable. It records Set calls for assertions.
type Cache struct {
	entries map[string]*gensi.CacheEntry

	// Gets and Sets count operations for cache-policy assertions.
	Gets int
	Sets int
}

func (c *Cache) key(url string, kind gensi.CacheKind) string {
	return url + "\x00" + string(kind)
}

func (c *Cache) Get(ctx context.Context, url string, kind gensi.CacheKind) (*gensi.CacheEntry, bool) {
	c.Gets++
	entry, ok := c.entries[c.key(url, kind)]
	return entry, ok
}

func (c *Cache) Set(ctx context.Context, entry *gensi.CacheEntry) {
	c.Sets++
	if c.entries == nil {
		c.entries = make(map[string]*gensi.CacheEntry)
	}
	c.entries[c.key(entry.URL, entry.Kind)] = entry
}

func (c *Cache) Clear(ctx context.Context) error {
	c.entries = nil
	return nil
}

func (c *Cache) Stats(ctx context.Context) (*gensi.CacheStats, error) {
	stats := &gensi.CacheStats{EntryCount: len(c.entries)}
	for _, e := range c.entries {
		stats.SizeBytes += int64(len(e.Payload))
	}
	return stats, nil
}

var _ gensi.ScriptRunner = (*ScriptRunner)(nil)

// ScriptRunner is a mock implementation of gensi.ScriptRunner.
type ScriptRunner struct {
	ExecuteFn func(source string, bindings map[string]any) (any, error)
}

func (r *ScriptRunner) Execute(source string, bindings map[string]any) (any, error) {
	return r.ExecuteFn(source, bindings)
}

var _ gensi.Builder = (*Builder)(nil)

// Builder is a mock implementation of gensi.Builder. It captures the
// build input for assertions.
type Builder struct {
	BuildFn func(ctx context.Context, in *gensi.BuildInput, outPath string) error

	// Input holds the last build input when BuildFn is nil.
	Input   *gensi.BuildInput
	OutPath string
}

func (b *Builder) Build(ctx context.Context, in *gensi.BuildInput, outPath string) error {
	if b.BuildFn != nil {
		return b.BuildFn(ctx, in, outPath)
	}
	b.Input = in
	b.OutPath = outPath
	return nil
}

var _ gensi.CoverGenerator = (*CoverGenerator)(nil)

// CoverGenerator is a mock implementation of gensi.CoverGenerator.
type CoverGenerator struct {
	GenerateFn func(ctx context.Context, title, author string, thumbnails []string) ([]byte, string, error)

	// Thumbnails holds the candidate list from the last call when
	// GenerateFn is nil.
	Thumbnails []string
}

func (g *CoverGenerator) Generate(ctx context.Context, title, author string, thumbnails []string) ([]byte, string, error) {
	if g.GenerateFn != nil {
		return g.GenerateFn(ctx, title, author, thumbnails)
	}
	g.Thumbnails = thumbnails
	return nil, "", gensi.Errorf(gensi.EUNAVAILABLE, "no cover generator configured")
}
