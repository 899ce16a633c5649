package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/docscrape/docscrape/internal/checkpoint"
	"github.com/docscrape/docscrape/internal/config"
	"github.com/docscrape/docscrape/internal/extract"
	"github.com/docscrape/docscrape/internal/hierarchy"
	"github.com/docscrape/docscrape/internal/model"
	"github.com/docscrape/docscrape/internal/urlutil"
)

// PageFetcher retrieves and parses one page. fetch.Fetcher satisfies
// this; tests substitute controlled fakes.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Controller drives a crawl: it explores the link graph reachable from
// the source's index URL in bounded-concurrency batches, accumulates
// extracted entries, and checkpoints periodically so an interrupted
// crawl can resume.
type Controller struct {
	src      *config.Source
	fetcher  PageFetcher
	engine   *extract.Engine
	frontier *Frontier
	logger   *slog.Logger

	delay              time.Duration
	maxConcurrent      int
	maxDepth           int
	checkpointInterval time.Duration
	checkpointFile     string
	resume             bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithDelay sets the pause inserted after each processed batch.
func WithDelay(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

// WithMaxConcurrent bounds simultaneously in-flight fetches per batch.
func WithMaxConcurrent(n int) Option {
	return func(c *Controller) { c.maxConcurrent = n }
}

// WithMaxDepth drops links discovered beyond this depth from the crawl
// root. See Crawl for the exact (and deliberately limited) semantics.
func WithMaxDepth(n int) Option {
	return func(c *Controller) { c.maxDepth = n }
}

// WithCheckpointInterval sets the minimum elapsed time between automatic
// checkpoint writes. Zero disables periodic checkpoints.
func WithCheckpointInterval(d time.Duration) Option {
	return func(c *Controller) { c.checkpointInterval = d }
}

// WithCheckpointFile sets the destination for periodic, shutdown, and
// final checkpoints. Empty disables checkpointing entirely.
func WithCheckpointFile(path string) Option {
	return func(c *Controller) { c.checkpointFile = path }
}

// WithResume restores frontier state from the checkpoint file before the
// crawl loop starts. A missing file starts fresh; a malformed file is
// fatal.
func WithResume(resume bool) Option {
	return func(c *Controller) { c.resume = resume }
}

// WithLogger sets the controller and extraction logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// NewController creates a crawl controller for one source.
func NewController(src *config.Source, fetcher PageFetcher, opts ...Option) *Controller {
	c := &Controller{
		src:                src,
		fetcher:            fetcher,
		frontier:           NewFrontier(),
		logger:             slog.New(slog.DiscardHandler),
		delay:              config.DefaultDelay,
		maxConcurrent:      config.DefaultMaxConcurrent,
		maxDepth:           config.DefaultMaxDepth,
		checkpointInterval: config.DefaultCheckpointInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.engine = extract.NewEngine(src, extract.WithLogger(c.logger))
	return c
}

// Stats summarizes a finished or in-progress crawl.
type Stats struct {
	PagesVisited int
	QueuedURLs   int
	Entries      int
}

// Stats returns current crawl counters.
func (c *Controller) Stats() Stats {
	return Stats{
		PagesVisited: c.frontier.VisitedCount(),
		QueuedURLs:   c.frontier.QueueLen(),
		Entries:      len(c.frontier.Entries()),
	}
}

// Crawl runs the crawl loop until the queue drains or ctx is cancelled.
//
// Cancellation is cooperative: it is checked at the top of each loop
// iteration, in-flight batch work is allowed to finish, a shutdown
// checkpoint is written, and the entries collected so far are returned
// with a nil error. A partial crawl is a valid, resumable outcome.
//
// Depth limiting is only meaningful for the seed frontier: URLs enqueued
// during the loop carry depth zero, so they always pass the max-depth
// check. Known limitation, kept for checkpoint compatibility with prior
// crawls rather than silently changed.
func (c *Controller) Crawl(ctx context.Context) ([]model.Entry, error) {
	if err := c.prepare(ctx); err != nil {
		return nil, err
	}

	lastCheckpoint := time.Now()
	for c.frontier.QueueLen() > 0 {
		select {
		case <-ctx.Done():
			return c.finish(true), nil
		default:
		}

		batch := c.frontier.DequeueBatch(c.maxConcurrent)
		c.processBatch(ctx, batch)

		if c.checkpointFile != "" && c.checkpointInterval > 0 &&
			time.Since(lastCheckpoint) >= c.checkpointInterval {
			if err := c.writeCheckpoint(); err != nil {
				c.logger.Warn("periodic checkpoint failed", "error", err)
			} else {
				lastCheckpoint = time.Now()
			}
		}

		if c.delay > 0 && c.frontier.QueueLen() > 0 {
			select {
			case <-ctx.Done():
				return c.finish(true), nil
			case <-time.After(c.delay):
			}
		}
	}

	return c.finish(false), nil
}

// prepare restores checkpoint state when resuming, then seeds the
// frontier from the index page if the queue is still empty.
func (c *Controller) prepare(ctx context.Context) error {
	if c.resume && c.checkpointFile != "" {
		state, err := checkpoint.Load(c.checkpointFile)
		switch {
		case err == nil:
			c.frontier.Restore(state.Visited, state.Queue, state.Entries)
			c.logger.Info("resumed from checkpoint",
				"file", c.checkpointFile,
				"visited", len(state.Visited),
				"queued", len(state.Queue),
				"entries", len(state.Entries))
		case errors.Is(err, checkpoint.ErrNotFound):
			c.logger.Info("no checkpoint found, starting fresh", "file", c.checkpointFile)
		default:
			return err
		}
	}

	if c.frontier.QueueLen() > 0 {
		return nil
	}
	return c.seed(ctx)
}

// seed fetches the index page and enqueues its links. An unreachable
// index is fatal: the crawl has no starting set without it.
func (c *Controller) seed(ctx context.Context) error {
	indexURL := urlutil.Normalize(c.src.IndexURL)

	doc, err := c.fetcher.Fetch(ctx, indexURL)
	if err != nil {
		return fmt.Errorf("crawler: fetch index %s: %w", indexURL, err)
	}
	c.frontier.MarkVisited(indexURL)

	links := c.engine.Links(doc, indexURL)
	if c.maxDepth < 0 {
		// Seed links are discovered at depth zero, the only depth the
		// crawl tracks; a negative limit drops even those.
		c.logger.Warn("max depth drops all seed links", "maxDepth", c.maxDepth, "links", len(links))
		links = nil
	}
	for _, link := range links {
		if !c.frontier.Seen(link) {
			c.frontier.Enqueue(link)
		}
	}
	c.logger.Info("seeded crawl frontier", "index", indexURL, "links", c.frontier.QueueLen())
	return nil
}

// processBatch fetches a batch of URLs with bounded parallelism and
// merges the results. The batch boundary is a strict barrier: no URL
// from the next batch is dequeued before every member of this batch has
// resolved.
func (c *Controller) processBatch(ctx context.Context, batch []string) {
	// Visited marking happens sequentially, before any fetch launches.
	// A URL that reaches this point is consumed whether or not its
	// fetch later succeeds.
	urls := make([]string, 0, len(batch))
	for _, u := range batch {
		if c.frontier.Seen(u) {
			continue
		}
		c.frontier.MarkVisited(u)
		urls = append(urls, u)
	}

	// The batch must drain even when ctx is cancelled mid-flight: every
	// URL here is already marked visited, so an aborted fetch would be
	// checkpointed as consumed without its entries or links. Cancellation
	// is observed at the top of the crawl loop only.
	fetchCtx := context.WithoutCancel(ctx)

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(c.maxConcurrent)

	for _, url := range urls {
		g.Go(func() error {
			doc, err := c.fetcher.Fetch(fetchCtx, url)
			if err != nil {
				// The URL stays visited and simply contributes
				// nothing; failed pages are never retried.
				c.logger.Warn("page fetch failed, skipping", "url", url, "error", err)
				return nil
			}

			entries := c.engine.Entries(doc, url)
			links := c.engine.Links(doc, url)

			mu.Lock()
			defer mu.Unlock()
			c.frontier.AppendEntries(entries...)
			for _, link := range links {
				if !c.frontier.Seen(link) {
					c.frontier.Enqueue(link)
				}
			}
			c.logger.Debug("page processed", "url", url, "entries", len(entries), "links", len(links))
			return nil
		})
	}

	// Workers always return nil; Wait is purely the batch barrier.
	_ = g.Wait()
}

// finish runs post-crawl assembly and writes the final checkpoint. The
// hierarchy pass only runs on normal completion; an interrupted crawl
// keeps its entries flat so a resumed run rebuilds links over the full
// set.
func (c *Controller) finish(interrupted bool) []model.Entry {
	entries := c.frontier.Entries()
	if !interrupted {
		hierarchy.Build(entries)
	}

	if c.checkpointFile != "" {
		if err := c.writeCheckpoint(); err != nil {
			c.logger.Warn("final checkpoint failed", "error", err)
		}
	}

	c.logger.Info("crawl finished",
		"interrupted", interrupted,
		"pages", c.frontier.VisitedCount(),
		"entries", len(entries),
		"pending", c.frontier.QueueLen())
	return entries
}

func (c *Controller) writeCheckpoint() error {
	state := &checkpoint.State{
		Source:  c.src,
		Visited: c.frontier.VisitedList(),
		Queue:   c.frontier.PendingList(),
		Entries: c.frontier.Entries(),
	}
	return checkpoint.Save(c.checkpointFile, state)
}
