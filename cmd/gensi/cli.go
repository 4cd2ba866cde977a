package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/claudehenchoz/gensi"
)

// Dependencies holds shared services and configuration for command
// execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Cache  gensi.Cache
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Build BuildCmd `cmd:"" help:"Build an ebook from a recipe file"`
	Cache CacheCmd `cmd:"" help:"Inspect or clear the fetch cache"`

	Verbose bool `short:"v" help:"Enable debug logging"`
}

// BuildCmd is the "build" subcommand.
type BuildCmd struct {
	Recipe   string        `arg:"" help:"Path to the recipe file"`
	Out      string        `short:"o" help:"Output path (defaults to the recipe title + .epub)"`
	Parallel int           `short:"p" default:"5" help:"Concurrent article fetch limit"`
	NoCache  bool          `help:"Bypass the fetch cache entirely"`
	Timeout  time.Duration `default:"30s" help:"Per-fetch timeout"`
}

// CacheCmd groups the cache maintenance subcommands.
type CacheCmd struct {
	Clear CacheClearCmd `cmd:"" help:"Delete every cached fetch"`
	Stats CacheStatsCmd `cmd:"" help:"Show cache entry count and size"`
}
