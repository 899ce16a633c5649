package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// durationPrecision rounds reported crawl durations to a readable
// granularity.
const durationPrecision = 100 * time.Millisecond

// SimpleWriter outputs a terse, human-readable crawl summary. This is
// the default terminal output.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary.
func (w *SimpleWriter) Write(result *Result) (int, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Source:        %s\n", result.SourceName)
	fmt.Fprintf(&b, "Index:         %s\n", result.IndexURL)
	fmt.Fprintf(&b, "Pages visited: %d\n", result.PagesVisited)
	fmt.Fprintf(&b, "Duration:      %s\n", result.Duration.Round(durationPrecision))
	if result.Interrupted {
		b.WriteString("Status:        interrupted (partial results, resumable)\n")
	} else {
		b.WriteString("Status:        complete\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Entries: %d\n", len(result.Entries))
	for _, typ := range typeOrder {
		if count := result.CountByType(typ); count > 0 {
			fmt.Fprintf(&b, "  %-10s %d\n", string(typ), count)
		}
	}

	if top := result.TopLevel(); len(top) > 0 {
		b.WriteString("\nTop-level entries:\n")
		for _, e := range top {
			fmt.Fprintf(&b, "  %s (%s)\n", e.ID, e.Type)
		}
	}

	n, err := io.WriteString(w.output, b.String())
	if err != nil {
		return n, fmt.Errorf("report: write summary: %w", err)
	}
	return n, nil
}
