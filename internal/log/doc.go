// Package log provides slog construction with attribute truncation so
// page text and long URLs never flood the crawl log.
package log
