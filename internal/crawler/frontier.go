package crawler

import (
	"sort"

	"github.com/docscrape/docscrape/internal/model"
)

// Frontier is the mutable crawl state: the set of visited normalized
// URLs, the FIFO queue of pending URLs, and the append-only entry
// accumulator.
//
// Design decision: The frontier is owned exclusively by the controller
// and never aliased elsewhere. It carries no locking of its own; the
// controller serializes access (mutations happen either between batches
// or under the controller's batch mutex), which keeps the invariants in
// one place instead of scattering them across a thread-safe container.
type Frontier struct {
	visited map[string]struct{}
	queue   []string
	entries []model.Entry
}

// NewFrontier creates an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		visited: make(map[string]struct{}),
	}
}

// Seen reports whether a normalized URL has been visited.
func (f *Frontier) Seen(url string) bool {
	_, ok := f.visited[url]
	return ok
}

// MarkVisited records a normalized URL as visited. The visited set only
// grows; there is no way to unmark a URL.
func (f *Frontier) MarkVisited(url string) {
	f.visited[url] = struct{}{}
}

// Enqueue appends URLs to the queue tail. The queue may contain
// duplicates; they are filtered at visit time, not at enqueue time.
func (f *Frontier) Enqueue(urls ...string) {
	f.queue = append(f.queue, urls...)
}

// DequeueBatch removes and returns up to n URLs from the queue head.
// Removal happens before the URLs' outcome is known; a dequeued URL is
// never re-enqueued, even when its fetch fails.
func (f *Frontier) DequeueBatch(n int) []string {
	if n > len(f.queue) {
		n = len(f.queue)
	}
	batch := f.queue[:n]
	f.queue = f.queue[n:]
	return batch
}

// QueueLen returns the number of pending URLs, duplicates included.
func (f *Frontier) QueueLen() int {
	return len(f.queue)
}

// VisitedCount returns the number of visited URLs.
func (f *Frontier) VisitedCount() int {
	return len(f.visited)
}

// AppendEntries adds entries to the accumulator.
func (f *Frontier) AppendEntries(entries ...model.Entry) {
	f.entries = append(f.entries, entries...)
}

// Entries returns the accumulated entry slice. The caller may mutate the
// entries in place (the hierarchy builder does) but must not do so while
// a batch is in flight.
func (f *Frontier) Entries() []model.Entry {
	return f.entries
}

// VisitedList returns the visited URLs sorted for deterministic
// serialization.
func (f *Frontier) VisitedList() []string {
	urls := make([]string, 0, len(f.visited))
	for u := range f.visited {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// PendingList returns a copy of the queue in FIFO order.
func (f *Frontier) PendingList() []string {
	queue := make([]string, len(f.queue))
	copy(queue, f.queue)
	return queue
}

// Restore replaces the frontier state wholesale. Used when resuming from
// a checkpoint.
func (f *Frontier) Restore(visited, queue []string, entries []model.Entry) {
	f.visited = make(map[string]struct{}, len(visited))
	for _, u := range visited {
		f.visited[u] = struct{}{}
	}
	f.queue = append([]string(nil), queue...)
	f.entries = append([]model.Entry(nil), entries...)
}
