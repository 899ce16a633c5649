package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/docscrape/docscrape/internal/model"
)

// JSONWriter outputs the full entry sequence as indented JSON. This is
// the machine-readable format downstream consumers ingest.
type JSONWriter struct {
	baseWriter
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer) *JSONWriter {
	return &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the entries as a JSON array. An empty crawl produces an
// empty array, not null.
func (w *JSONWriter) Write(result *Result) (int, error) {
	entries := result.Entries
	if entries == nil {
		entries = []model.Entry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("report: marshal entries: %w", err)
	}
	data = append(data, '\n')

	n, err := w.output.Write(data)
	if err != nil {
		return n, fmt.Errorf("report: write json: %w", err)
	}
	return n, nil
}
