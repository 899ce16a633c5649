// Package urlutil provides URL normalization and reference resolution
// shared by the fetcher, the extraction engine, and the crawl frontier.
//
// A "normalized URL" is the deduplication key for visited tracking: the
// fragment is stripped and the scheme/host are lowercased. Normalization
// must stay idempotent because checkpointed frontiers are re-normalized
// on restore.
package urlutil
