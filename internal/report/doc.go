// Package report renders crawl results for humans and machines: a terse
// terminal summary, a JSON entry dump, and a Markdown report with a
// type-distribution chart.
package report
