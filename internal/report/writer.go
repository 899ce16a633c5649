package report

import (
	"io"
	"time"

	"github.com/docscrape/docscrape/internal/model"
)

// Result is the outcome of one crawl, handed to report writers.
type Result struct {
	// SourceName is the name of the source configuration.
	SourceName string

	// BaseURL is the documentation site root.
	BaseURL string

	// IndexURL is the crawl starting point.
	IndexURL string

	// Entries is the final entry sequence, hierarchy links included.
	Entries []model.Entry

	// PagesVisited is the number of pages fetched.
	PagesVisited int

	// Duration is the wall-clock crawl time.
	Duration time.Duration

	// Interrupted reports whether the crawl was cancelled before the
	// queue drained.
	Interrupted bool
}

// typeOrder is the display order for entry types, matching the
// classification priority.
var typeOrder = []model.EntryType{
	model.TypeClass,
	model.TypeMethod,
	model.TypeFunction,
	model.TypeModule,
	model.TypeProperty,
}

// CountByType returns the number of entries of one type.
func (r *Result) CountByType(typ model.EntryType) int {
	count := 0
	for _, e := range r.Entries {
		if e.Type == typ {
			count++
		}
	}
	return count
}

// TopLevel returns the entries without a parent, in processing order.
func (r *Result) TopLevel() []model.Entry {
	var top []model.Entry
	for _, e := range r.Entries {
		if e.Parent == "" {
			top = append(top, e)
		}
	}
	return top
}

// Writer defines the interface for report output.
// Implementations write crawl results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the result to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(result *Result) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write results, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the result to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(result *Result) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
