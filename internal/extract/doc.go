// Package extract turns parsed documentation pages into typed entries.
//
// The engine is a pure function of (parsed page, source configuration,
// page URL): it performs no I/O and keeps no mutable state between
// pages, which is what makes the crawl controller's per-batch
// parallelism safe. Every extraction step is gated on the presence of
// its selector in the source configuration; an absent selector skips
// the step silently.
package extract
