package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/claudehenchoz/gensi/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Cache database path. Set before calling Run().
	CachePath string

	// SQLite cache shared by every fetch in a run.
	Cache *sqlite.Cache
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		CachePath: defaultCachePath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.Cache != nil {
		return m.Cache.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("gensi"),
		kong.Description("Turns web sources into ebooks, one recipe at a time."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'gensi --help' to see available commands")
	}

	switch args[0] {
	case "help", "--help", "-h":
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Build without --no-cache and the cache subcommands need the store.
	// kong resolves the command after flag parsing, so leading flags like
	// -v cannot hide it.
	isBuild := strings.HasPrefix(kongCtx.Command(), "build")
	needsCache := !isBuild || !cli.Build.NoCache
	if needsCache {
		m.Cache = sqlite.NewCache(m.CachePath, sqlite.WithLogger(deps.Logger))
		if err := m.Cache.Open(); err != nil {
			fmt.Fprintln(stderr, "Hint: Set GENSI_CACHE to use a different cache path")
			return fmt.Errorf("failed to open cache at %q: %w", m.CachePath, err)
		}
		defer m.Close()
		deps.Cache = m.Cache
	}

	return kongCtx.Run(deps)
}

func defaultCachePath() string {
	if path := os.Getenv("GENSI_CACHE"); path != "" {
		return path
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "gensi-cache.db"
	}
	dir := filepath.Join(base, "gensi")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "cache.db")
}
