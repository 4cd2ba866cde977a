// Package slog provides logging decorators for gensi services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/claudehenchoz/gensi"
)

// Ensure LoggingFetcher implements gensi.Fetcher.
var _ gensi.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with structured logging of every fetch.
type LoggingFetcher struct {
	next   gensi.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a LoggingFetcher wrapping next.
func NewLoggingFetcher(next gensi.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

func (f *LoggingFetcher) Fetch(ctx context.Context, url string, purpose gensi.Purpose) (string, string, error) {
	start := time.Now()
	body, resolvedURL, err := f.next.Fetch(ctx, url, purpose)
	if err != nil {
		f.logger.Error("fetch", "url", url, "purpose", purpose, "err", err, "duration", time.Since(start))
		return "", "", err
	}
	f.logger.Debug("fetch", "url", url, "purpose", purpose, "bytes", len(body), "duration", time.Since(start))
	return body, resolvedURL, nil
}

func (f *LoggingFetcher) FetchBinary(ctx context.Context, url string, purpose gensi.Purpose) ([]byte, string, error) {
	start := time.Now()
	body, resolvedURL, err := f.next.FetchBinary(ctx, url, purpose)
	if err != nil {
		f.logger.Error("fetch binary", "url", url, "purpose", purpose, "err", err, "duration", time.Since(start))
		return nil, "", err
	}
	f.logger.Debug("fetch binary", "url", url, "purpose", purpose, "bytes", len(body), "duration", time.Since(start))
	return body, resolvedURL, nil
}
