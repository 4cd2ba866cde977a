// Package sqlite provides the SQLite-backed durable fetch cache.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/claudehenchoz/gensi"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DefaultTTL is how long cache entries live before the store treats them
// as expired.
const DefaultTTL = 7 * 24 * time.Hour

// Ensure Cache implements gensi.Cache at compile time.
var _ gensi.Cache = (*Cache)(nil)

// Cache stores fetch results in a SQLite database with per-entry expiry.
// Read failures degrade to misses and write failures to no-ops: callers
// never see cache errors on the fetch path. Safe for concurrent use; the
// single-connection limit serializes writes.
type Cache struct {
	db     *sql.DB
	path   string
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the entry time-to-live. Defaults to DefaultTTL (7 days).
func WithTTL(d time.Duration) Option {
	return func(c *Cache) {
		c.ttl = d
	}
}

// WithLogger sets the logger for degraded cache operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithNow overrides the clock. Used by tests to force expiry.
func WithNow(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a Cache backed by the database at path.
// Use ":memory:" for an in-memory cache.
func NewCache(path string, opts ...Option) *Cache {
	c := &Cache{
		path:   path,
		ttl:    DefaultTTL,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open opens the database connection and creates the schema if needed.
func (c *Cache) Open() error {
	conn, err := sql.Open("sqlite3", c.path)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to cache database: %w", err)
	}

	// Wait up to 5 seconds on lock contention instead of failing with
	// "database is locked".
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// WAL mode allows concurrent reads during writes. Not supported for
	// in-memory databases.
	if c.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	c.db = conn

	if err := c.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create cache schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *Cache) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS entries (
			key TEXT PRIMARY KEY,
			url TEXT NOT NULL,
			resolved_url TEXT NOT NULL,
			payload BLOB NOT NULL,
			kind TEXT NOT NULL,
			cached_at TEXT NOT NULL,
			expires_at TEXT NOT NULL
		);
	`
	_, err := c.db.Exec(schema)
	return err
}

// cacheKey fingerprints (url, kind). The kind is part of the hash input so
// text and binary entries for the same URL never collide.
func cacheKey(url string, kind gensi.CacheKind) string {
	h := xxhash.New()
	_, _ = h.WriteString(url)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(string(kind))
	return fmt.Sprintf("%016x", h.Sum64())
}

// Get retrieves a cached entry. Absent, expired, and unreadable entries
// all report a miss.
func (c *Cache) Get(ctx context.Context, url string, kind gensi.CacheKind) (*gensi.CacheEntry, bool) {
	key := cacheKey(url, kind)

	var entry gensi.CacheEntry
	var cachedAt, expiresAt string
	err := c.db.QueryRowContext(ctx, `
		SELECT url, resolved_url, payload, kind, cached_at, expires_at
		FROM entries
		WHERE key = ?
	`, key).Scan(&entry.URL, &entry.ResolvedURL, &entry.Payload, &entry.Kind, &cachedAt, &expiresAt)

	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		c.logger.Debug("cache read failed, treating as miss", "url", url, "error", err)
		return nil, false
	}

	expiry, err := time.Parse(time.RFC3339, expiresAt)
	if err != nil || !c.now().Before(expiry) {
		// Expired or unparseable; drop the row opportunistically.
		_, _ = c.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, key)
		return nil, false
	}

	if t, err := time.Parse(time.RFC3339, cachedAt); err == nil {
		entry.CachedAt = t
	}
	return &entry, true
}

// Set stores an entry with the configured TTL. Write failures are logged
// and swallowed.
func (c *Cache) Set(ctx context.Context, entry *gensi.CacheEntry) {
	now := c.now().UTC()
	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO entries (key, url, resolved_url, payload, kind, cached_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, cacheKey(entry.URL, entry.Kind), entry.URL, entry.ResolvedURL, entry.Payload,
		string(entry.Kind), now.Format(time.RFC3339), now.Add(c.ttl).Format(time.RFC3339))

	if err != nil {
		c.logger.Debug("cache write failed, skipping", "url", entry.URL, "error", err)
	}
}

// Clear removes all entries.
func (c *Cache) Clear(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM entries`)
	return err
}

// Stats reports entry count and total payload size.
func (c *Cache) Stats(ctx context.Context) (*gensi.CacheStats, error) {
	var stats gensi.CacheStats
	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(LENGTH(payload)), 0) FROM entries
	`).Scan(&stats.EntryCount, &stats.SizeBytes)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
