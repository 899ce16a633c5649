package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/docscrape/docscrape/internal/config"
	"github.com/docscrape/docscrape/internal/crawler"
	"github.com/docscrape/docscrape/internal/database"
	"github.com/docscrape/docscrape/internal/fetch"
	"github.com/docscrape/docscrape/internal/log"
	"github.com/docscrape/docscrape/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <source.yaml>",
		Short: "Crawl a documentation site described by a source config",
		Long: `Crawl fetches a documentation site starting from the source config's
index URL, extracts structured entries from every reachable page, links
them into a namespace hierarchy, and writes a report.

An interrupted crawl (Ctrl-C) writes a checkpoint and reports the
entries collected so far; rerun with --resume to pick up where it
stopped.

Examples:
  # Crawl with the human-readable summary on stdout
  docscrape crawl pytest.yaml

  # Full entry dump as JSON, written to a file
  docscrape crawl --json -o entries.json pytest.yaml

  # Slow, deep crawl with resume support
  docscrape crawl --delay 2s --depth 5 --resume pytest.yaml

  # Persist entries to a SQLite database for later querying
  docscrape crawl --db ~/.local/share/docscrape pytest.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().Duration("delay", config.DefaultDelay,
		"Pause inserted after each batch of page fetches")
	cmd.Flags().IntP("concurrency", "n", config.DefaultMaxConcurrent,
		"Maximum concurrent page fetches per batch")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link depth; only the seed links on the index page are depth-checked")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-request fetch timeout")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum response body bytes read per page")

	// Checkpoint flags
	cmd.Flags().Duration("checkpoint-interval", config.DefaultCheckpointInterval,
		"Minimum time between periodic checkpoint writes (0 disables)")
	cmd.Flags().String("checkpoint", "",
		"Checkpoint file path (default: per-source file under the XDG data directory)")
	cmd.Flags().BoolP("resume", "r", false,
		"Resume from an existing checkpoint instead of starting fresh")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output the full entry list as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output a Markdown crawl report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Persistence flags
	cmd.Flags().String("db", "",
		"Persist entries to a SQLite database in this directory (empty disables)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)

	// Graceful shutdown on interrupt: the controller checkpoints and
	// returns partial entries instead of dying mid-batch.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.SourceFile = args[0]
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.Delay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.MaxConcurrent, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.MaxBodySize, err = cmd.Flags().GetInt64("max-body-size")
	if err != nil {
		return nil, err
	}

	cfg.CheckpointInterval, err = cmd.Flags().GetDuration("checkpoint-interval")
	if err != nil {
		return nil, err
	}

	cfg.CheckpointFile, err = cmd.Flags().GetString("checkpoint")
	if err != nil {
		return nil, err
	}

	cfg.Resume, err = cmd.Flags().GetBool("resume")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.OutputFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.DBDir, err = cmd.Flags().GetString("db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = cfg.DBDir != ""

	return cfg, nil
}

// runCrawl loads the source, runs the crawl, and emits the report.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	src, err := config.LoadSource(cfg.SourceFile)
	if err != nil {
		return fmt.Errorf("failed to load source config: %w", err)
	}

	checkpointFile := cfg.CheckpointFile
	if checkpointFile == "" {
		checkpointFile = config.DefaultCheckpointFile(src.Name)
	}

	fetcher := fetch.New(
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
	)

	ctrl := crawler.NewController(src, fetcher,
		crawler.WithDelay(cfg.Delay),
		crawler.WithMaxConcurrent(cfg.MaxConcurrent),
		crawler.WithMaxDepth(cfg.MaxDepth),
		crawler.WithCheckpointInterval(cfg.CheckpointInterval),
		crawler.WithCheckpointFile(checkpointFile),
		crawler.WithResume(cfg.Resume),
		crawler.WithLogger(logger),
	)

	logger.Info("starting crawl",
		"source", src.Name,
		"index", src.IndexURL,
		"checkpoint", checkpointFile,
		"resume", cfg.Resume,
	)

	startTime := time.Now()
	entries, err := ctrl.Crawl(ctx)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	stats := ctrl.Stats()
	result := &report.Result{
		SourceName:   src.Name,
		BaseURL:      src.BaseURL,
		IndexURL:     src.IndexURL,
		Entries:      entries,
		PagesVisited: stats.PagesVisited,
		Duration:     time.Since(startTime),
		Interrupted:  ctx.Err() != nil,
	}

	if err := outputReport(cfg, result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.SaveToDB {
		if err := saveEntries(ctx, cfg, src, result, logger); err != nil {
			logger.Error("failed to save crawl to database", "error", err)
		}
	}

	return nil
}

// outputReport writes the crawl report in the requested format.
func outputReport(cfg *config.Config, result *report.Result) error {
	var output *os.File
	if cfg.OutputFile != "" {
		dir := filepath.Dir(cfg.OutputFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output)
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output)
	}

	_, err := writer.Write(result)
	return err
}

// saveEntries persists the crawl result to the entry database.
// Interrupted crawls are saved too; their partial entry sets are still
// useful and the interrupted flag marks them as such.
func saveEntries(ctx context.Context, cfg *config.Config, src *config.Source, result *report.Result, logger *slog.Logger) error {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	crawlID, err := db.SaveCrawl(ctx, src, result.Entries, result.PagesVisited, result.Interrupted)
	if err != nil {
		return err
	}

	logger.Info("crawl saved to database",
		"crawlID", crawlID,
		"dir", cfg.DBDir,
		"entries", len(result.Entries),
	)
	return nil
}
