package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. These are chosen for polite crawling of
// public documentation sites.
const (
	// DefaultDelay is the minimum wall-clock gap inserted after each
	// processed batch. One second is conservative and respectful of
	// documentation hosts, which are often rate limited.
	DefaultDelay = 1 * time.Second

	// DefaultMaxConcurrent bounds simultaneously in-flight page fetches.
	// Five concurrent fetches balance throughput against host load; the
	// batch barrier means bursts never exceed this value.
	DefaultMaxConcurrent = 5

	// DefaultMaxDepth limits link discovery from the crawl root.
	// Documentation sites are shallow; three levels reach almost all
	// reference pages linked from an index.
	DefaultMaxDepth = 3

	// DefaultCheckpointInterval is the minimum elapsed time between
	// automatic checkpoint writes. Thirty seconds keeps the recovery
	// window small without turning the crawl into a disk benchmark.
	DefaultCheckpointInterval = 30 * time.Second

	// DefaultTimeout is the per-request fetch timeout. Documentation
	// hosts are ordinary web servers; thirty seconds is generous.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies docscrape in HTTP requests. A
	// descriptive User-Agent lets site operators identify crawler traffic.
	DefaultUserAgent = "docscrape/1.0 (+https://github.com/docscrape/docscrape)"

	// DefaultMaxBodySize limits the response body size to read. 5MB is
	// sufficient for even very large reference pages while preventing
	// memory exhaustion from unexpected responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "docscrape"
)

// Config holds all runtime options for a crawl. It is populated from CLI
// flags and passed through the application via dependency injection
// rather than global state.
type Config struct {
	// SourceFile is the path to the YAML source configuration describing
	// the documentation site to crawl.
	SourceFile string

	// Delay is the pause inserted after each processed batch. This is a
	// single global rate limit, not per-host.
	Delay time.Duration

	// MaxConcurrent is the upper bound on simultaneously in-flight page
	// fetches within one batch.
	MaxConcurrent int

	// MaxDepth drops links discovered beyond this depth from the crawl
	// root. Note that only directly-seeded links carry a meaningful
	// depth; see crawler.Controller for the exact semantics.
	MaxDepth int

	// CheckpointInterval is the minimum elapsed time between automatic
	// checkpoint writes. Zero disables periodic checkpoints.
	CheckpointInterval time.Duration

	// CheckpointFile is the destination for periodic, shutdown, and
	// final checkpoints. Empty disables checkpointing entirely.
	CheckpointFile string

	// Resume restores frontier state from CheckpointFile before the
	// crawl loop starts. A missing file starts a fresh crawl; a
	// malformed file is fatal.
	Resume bool

	// Timeout is the per-request fetch timeout.
	Timeout time.Duration

	// UserAgent is sent with every HTTP request.
	UserAgent string

	// MaxBodySize limits response body bytes read per page.
	// Zero applies DefaultMaxBodySize.
	MaxBodySize int64

	// OutputFile receives the report. Empty writes to stdout.
	OutputFile string

	// JSONReport emits the full entry list as JSON.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport emits a Markdown crawl summary.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// DBDir is the directory for the SQLite entry database. When set,
	// completed crawls are persisted for querying and history.
	DBDir string

	// SaveToDB indicates whether to persist the final entry set.
	// Automatically true when DBDir is configured.
	SaveToDB bool

	// Verbose enables slog.LevelDebug output. When false, only warnings
	// and errors are logged.
	Verbose bool
}

// NewConfig creates a Config with default values. Many defaults are
// non-zero, so relying on zero values would be wrong; the constructor
// also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		Delay:              DefaultDelay,
		MaxConcurrent:      DefaultMaxConcurrent,
		MaxDepth:           DefaultMaxDepth,
		CheckpointInterval: DefaultCheckpointInterval,
		Timeout:            DefaultTimeout,
		UserAgent:          DefaultUserAgent,
		MaxBodySize:        DefaultMaxBodySize,
	}
}

// Validate checks the configuration and returns the first error found.
// It is called once after CLI parsing, before any crawling begins.
func (c *Config) Validate() error {
	if c.SourceFile == "" {
		return ErrNoSourceFile
	}
	if c.MaxConcurrent <= 0 {
		return ErrInvalidMaxConcurrent
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.CheckpointInterval < 0 {
		return ErrInvalidCheckpointInterval
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

// XDGDataDir returns the XDG data directory for docscrape.
// On Linux: ~/.local/share/docscrape
// On macOS: ~/Library/Application Support/docscrape
// On Windows: %LOCALAPPDATA%\docscrape
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for docscrape.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// DefaultCheckpointFile returns the default checkpoint path for a source,
// located under the XDG data directory so interrupted crawls survive
// working-directory changes.
func DefaultCheckpointFile(sourceName string) string {
	return filepath.Join(XDGDataDir(), sourceName+".checkpoint.json")
}
