// Package crawler drives documentation crawls: it owns the frontier
// (visited set, pending queue, entry accumulator) and runs the
// fetch-extract-enqueue loop in bounded-concurrency batches with
// periodic checkpointing and cooperative cancellation.
package crawler
