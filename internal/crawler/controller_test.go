package crawler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/docscrape/docscrape/internal/checkpoint"
	"github.com/docscrape/docscrape/internal/config"
	"github.com/docscrape/docscrape/internal/model"
)

const indexURL = "https://docs.test/index"

func crawlSource() *config.Source {
	return &config.Source{
		Name:     "test-docs",
		BaseURL:  "https://docs.test",
		IndexURL: indexURL,
		Selectors: config.Selectors{
			NavigationLinks: "nav a",
			ContentLinks:    "a.entry",
		},
		Patterns: config.Patterns{
			IsFunction:  config.MustCompilePattern(`\(`),
			NameExtract: config.MustCompilePattern(`^([\w.]+)`),
		},
	}
}

// fakeFetcher serves pages from a map and records call and concurrency
// behavior. It deliberately ignores context cancellation so in-flight
// work always completes, mirroring the cooperative shutdown contract.
type fakeFetcher struct {
	pages     map[string]string
	fetchTime time.Duration

	mu          sync.Mutex
	calls       []string
	inFlight    int
	maxInFlight int
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*goquery.Document, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	html, ok := f.pages[url]
	f.mu.Unlock()

	if f.fetchTime > 0 {
		time.Sleep(f.fetchTime)
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	if !ok {
		return nil, errors.New("unreachable")
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (f *fakeFetcher) fetched(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == url {
			return true
		}
	}
	return false
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func entryIDs(entries []model.Entry) map[string]bool {
	ids := make(map[string]bool, len(entries))
	for _, e := range entries {
		ids[e.ID] = true
	}
	return ids
}

// TestCrawl tests a full crawl: seeding, link discovery across pages,
// dedup, and hierarchy assembly.
func TestCrawl(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{pages: map[string]string{
		indexURL: `<html><body><nav>
			<a href="/a">A</a>
			<a href="/b">B</a>
		</nav></body></html>`,
		"https://docs.test/a": `<html><body>
			<a class="entry">widget()</a>
			<nav><a href="/c">C</a><a href="/a#top">self</a></nav>
		</body></html>`,
		"https://docs.test/b": `<html><body>
			<a class="entry">helper()</a>
		</body></html>`,
		"https://docs.test/c": `<html><body>
			<a class="entry">widget.render()</a>
		</body></html>`,
	}}

	c := NewController(crawlSource(), fetcher,
		WithDelay(0),
		WithMaxConcurrent(2),
	)

	entries, err := c.Crawl(context.Background())
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	ids := entryIDs(entries)
	for _, want := range []string{"widget", "helper", "widget.render"} {
		if !ids[want] {
			t.Errorf("missing entry %q", want)
		}
	}

	// Hierarchy assembled over the final set.
	for _, e := range entries {
		switch e.ID {
		case "widget.render":
			if e.Parent != "widget" {
				t.Errorf("widget.render parent = %q, want widget", e.Parent)
			}
		case "widget":
			if len(e.Children) != 1 || e.Children[0] != "widget.render" {
				t.Errorf("widget children = %v", e.Children)
			}
		}
	}

	// Each page fetched exactly once despite the self-link on /a.
	if got := fetcher.callCount(); got != 4 {
		t.Errorf("fetch calls = %d, want 4 (index + 3 pages)", got)
	}

	stats := c.Stats()
	if stats.PagesVisited != 4 || stats.QueuedURLs != 0 || stats.Entries != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

// TestCrawlBatchConcurrency verifies the concurrency bound with a queue
// larger than one batch.
func TestCrawlBatchConcurrency(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		indexURL: `<html><body><nav>
			<a href="/p1">1</a><a href="/p2">2</a><a href="/p3">3</a>
			<a href="/p4">4</a><a href="/p5">5</a>
		</nav></body></html>`,
	}
	for _, p := range []string{"p1", "p2", "p3", "p4", "p5"} {
		pages["https://docs.test/"+p] = `<html><body><a class="entry">` + p + `()</a></body></html>`
	}

	fetcher := &fakeFetcher{pages: pages, fetchTime: 20 * time.Millisecond}

	c := NewController(crawlSource(), fetcher,
		WithDelay(0),
		WithMaxConcurrent(2),
	)

	entries, err := c.Crawl(context.Background())
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("entries = %d, want 5", len(entries))
	}

	if fetcher.maxInFlight > 2 {
		t.Errorf("max in-flight fetches = %d, want <= 2", fetcher.maxInFlight)
	}
}

// TestCrawlFetchFailureIsRecoverable verifies a failing page is skipped
// without aborting the crawl or being retried.
func TestCrawlFetchFailureIsRecoverable(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{pages: map[string]string{
		indexURL: `<html><body><nav>
			<a href="/gone">gone</a>
			<a href="/b">B</a>
		</nav></body></html>`,
		"https://docs.test/b": `<html><body><a class="entry">helper()</a></body></html>`,
	}}

	c := NewController(crawlSource(), fetcher, WithDelay(0))

	entries, err := c.Crawl(context.Background())
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "helper" {
		t.Errorf("entries = %+v", entries)
	}

	// The failed URL stays consumed.
	stats := c.Stats()
	if stats.PagesVisited != 3 {
		t.Errorf("pages visited = %d, want 3 (index, gone, b)", stats.PagesVisited)
	}
}

// TestCrawlIndexFailureIsFatal verifies an unreachable index aborts the
// crawl.
func TestCrawlIndexFailureIsFatal(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{pages: map[string]string{}}
	c := NewController(crawlSource(), fetcher, WithDelay(0))

	if _, err := c.Crawl(context.Background()); err == nil {
		t.Fatal("expected fatal error for unreachable index")
	}
}

// TestCrawlResume verifies a checkpoint restores the frontier: visited
// pages are not refetched and prior entries are kept.
func TestCrawlResume(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "resume.json")
	prior := &checkpoint.State{
		Source:  crawlSource(),
		Visited: []string{indexURL, "https://docs.test/a"},
		Queue:   []string{"https://docs.test/b"},
		Entries: []model.Entry{
			{ID: "widget", Type: model.TypeFunction, Name: "widget", Examples: []model.Example{}},
		},
	}
	if err := checkpoint.Save(file, prior); err != nil {
		t.Fatalf("save prior state: %v", err)
	}

	fetcher := &fakeFetcher{pages: map[string]string{
		"https://docs.test/b": `<html><body><a class="entry">helper()</a></body></html>`,
	}}

	c := NewController(crawlSource(), fetcher,
		WithDelay(0),
		WithCheckpointFile(file),
		WithResume(true),
	)

	entries, err := c.Crawl(context.Background())
	if err != nil {
		t.Fatalf("crawl: %v", err)
	}

	if fetcher.fetched(indexURL) {
		t.Error("index must not be refetched when resuming")
	}
	if fetcher.fetched("https://docs.test/a") {
		t.Error("visited page must not be refetched")
	}
	if !fetcher.fetched("https://docs.test/b") {
		t.Error("queued page must be fetched")
	}

	ids := entryIDs(entries)
	if !ids["widget"] || !ids["helper"] {
		t.Errorf("entries = %v", ids)
	}
}

// TestCrawlResumeMalformedCheckpointIsFatal verifies restore never
// silently discards partial progress.
func TestCrawlResumeMalformedCheckpointIsFatal(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(file, []byte("{broken"), 0600); err != nil {
		t.Fatal(err)
	}

	fetcher := &fakeFetcher{pages: map[string]string{}}
	c := NewController(crawlSource(), fetcher,
		WithDelay(0),
		WithCheckpointFile(file),
		WithResume(true),
	)

	if _, err := c.Crawl(context.Background()); err == nil {
		t.Fatal("expected fatal error for malformed checkpoint")
	}
}

// ctxFetcher honors context cancellation the way the real HTTP fetcher
// does: a fetch whose context is done before its simulated latency
// elapses fails with the context error. batchStarted is closed when the
// first non-index fetch begins.
type ctxFetcher struct {
	pages        map[string]string
	delay        time.Duration
	batchStarted chan struct{}
	once         sync.Once
}

func (f *ctxFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if url != indexURL {
		f.once.Do(func() { close(f.batchStarted) })
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(f.delay):
	}

	html, ok := f.pages[url]
	if !ok {
		return nil, errors.New("unreachable")
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// TestCrawlCancellationMidBatch verifies a cancel arriving while a batch
// is in flight lets those fetches finish. The batch URLs are already
// consumed from the queue, so aborting them would checkpoint them as
// visited with their entries lost forever.
func TestCrawlCancellationMidBatch(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "midbatch.json")

	fetcher := &ctxFetcher{
		pages: map[string]string{
			indexURL: `<html><body><nav>
				<a href="/a">A</a>
				<a href="/b">B</a>
			</nav></body></html>`,
			"https://docs.test/a": `<html><body>
				<a class="entry">widget()</a>
				<nav><a href="/c">C</a></nav>
			</body></html>`,
			"https://docs.test/b": `<html><body><a class="entry">helper()</a></body></html>`,
			"https://docs.test/c": `<html><body><a class="entry">extra()</a></body></html>`,
		},
		delay:        100 * time.Millisecond,
		batchStarted: make(chan struct{}),
	}

	c := NewController(crawlSource(), fetcher,
		WithDelay(0),
		WithMaxConcurrent(2),
		WithCheckpointFile(file),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-fetcher.batchStarted
		cancel()
	}()

	entries, err := c.Crawl(ctx)
	if err != nil {
		t.Fatalf("cancelled crawl must not error: %v", err)
	}

	// Both in-flight pages of the first batch contribute their entries.
	ids := entryIDs(entries)
	if !ids["widget"] || !ids["helper"] {
		t.Errorf("in-flight pages lost on cancellation, entries = %v", ids)
	}
	if len(entries) != 2 {
		t.Errorf("entries = %d, want 2", len(entries))
	}

	state, err := checkpoint.Load(file)
	if err != nil {
		t.Fatalf("load shutdown checkpoint: %v", err)
	}
	if len(state.Entries) != 2 {
		t.Errorf("checkpointed entries = %d, want 2", len(state.Entries))
	}
	if len(state.Visited) != 3 {
		t.Errorf("checkpointed visited = %v, want index plus the batch", state.Visited)
	}
	if len(state.Queue) != 1 || state.Queue[0] != "https://docs.test/c" {
		t.Errorf("checkpointed queue = %v, want the undiscovered page", state.Queue)
	}
}

// TestCrawlSeedDepthLimit verifies the depth limit applies to the seed
// frontier, the only depth-tracked discovery point.
func TestCrawlSeedDepthLimit(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		indexURL: `<html><body><nav>
			<a href="/a">A</a>
		</nav></body></html>`,
		"https://docs.test/a": `<html><body><a class="entry">widget()</a></body></html>`,
	}

	t.Run("negative limit drops seed links", func(t *testing.T) {
		t.Parallel()

		fetcher := &fakeFetcher{pages: pages}
		c := NewController(crawlSource(), fetcher,
			WithDelay(0),
			WithMaxDepth(-1),
		)

		entries, err := c.Crawl(context.Background())
		if err != nil {
			t.Fatalf("crawl: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("entries = %d, want 0", len(entries))
		}
		if fetcher.fetched("https://docs.test/a") {
			t.Error("seed link must be dropped by a negative depth limit")
		}
	})

	t.Run("zero limit keeps depth-zero seeds", func(t *testing.T) {
		t.Parallel()

		fetcher := &fakeFetcher{pages: pages}
		c := NewController(crawlSource(), fetcher,
			WithDelay(0),
			WithMaxDepth(0),
		)

		entries, err := c.Crawl(context.Background())
		if err != nil {
			t.Fatalf("crawl: %v", err)
		}
		if len(entries) != 1 || entries[0].ID != "widget" {
			t.Errorf("entries = %+v, want widget", entries)
		}
	})
}

// TestCrawlCancellation verifies cancellation returns partial results
// with a shutdown checkpoint instead of an error.
func TestCrawlCancellation(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "shutdown.json")

	fetcher := &fakeFetcher{pages: map[string]string{
		indexURL: `<html><body><nav>
			<a href="/a">A</a>
			<a href="/b">B</a>
		</nav></body></html>`,
	}}

	c := NewController(crawlSource(), fetcher,
		WithDelay(0),
		WithCheckpointFile(file),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Stop before the first batch; seeding still runs.

	entries, err := c.Crawl(ctx)
	if err != nil {
		t.Fatalf("cancelled crawl must not error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}

	state, err := checkpoint.Load(file)
	if err != nil {
		t.Fatalf("load shutdown checkpoint: %v", err)
	}
	if len(state.Queue) != 2 {
		t.Errorf("checkpointed queue = %v, want both pending URLs", state.Queue)
	}
	if len(state.Visited) != 1 {
		t.Errorf("checkpointed visited = %v, want just the index", state.Visited)
	}
}
