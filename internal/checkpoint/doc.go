// Package checkpoint persists and restores crawl state so interrupted
// crawls can resume without refetching visited pages.
package checkpoint
