package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs crawl results in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. Mermaid chart embedding for the type distribution
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the result in Markdown format.
func (w *MarkdownWriter) Write(result *Result) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeTypeSummary(md, result)
	w.writeTopLevel(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the crawl information table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *Result) {
	md.H1("Documentation Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", "`" + result.SourceName + "`"},
			{"Index URL", result.IndexURL},
			{"Pages Visited", strconv.Itoa(result.PagesVisited)},
			{"Entries", strconv.Itoa(len(result.Entries))},
			{"Duration", result.Duration.Round(durationPrecision).String()},
			{"Status", w.statusText(result)},
		},
	})
	md.PlainText("")
}

// statusText returns the status cell based on the crawl outcome.
func (w *MarkdownWriter) statusText(result *Result) string {
	if result.Interrupted {
		return "⚠️ Interrupted (partial results, resumable)"
	}
	return "✅ Complete"
}

// writeTypeSummary writes the per-type counts with a pie chart.
func (w *MarkdownWriter) writeTypeSummary(md *markdown.Markdown, result *Result) {
	md.H2("Entries by Type")
	md.PlainText("")

	rows := make([][]string, 0, len(typeOrder)+1)
	for _, typ := range typeOrder {
		rows = append(rows, []string{string(typ), strconv.Itoa(result.CountByType(typ))})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(len(result.Entries)) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Type", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(result.Entries) > 0 {
		w.writePieChart(md, result)
	}
}

// writePieChart writes a mermaid pie chart for the type distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, result *Result) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Entry Type Distribution"),
		piechart.WithShowData(true),
	)

	for _, typ := range typeOrder {
		if count := result.CountByType(typ); count > 0 {
			chart.LabelAndIntValue(string(typ), uint64(count))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeTopLevel writes the hierarchy roots with their direct children.
func (w *MarkdownWriter) writeTopLevel(md *markdown.Markdown, result *Result) {
	md.H2("Top-Level Entries")
	md.PlainText("")

	top := result.TopLevel()
	if len(top) == 0 {
		md.PlainText("No entries extracted.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(top))
	for i, e := range top {
		title := e.Title
		if title == "" {
			title = "-"
		}
		rows[i] = []string{
			"`" + e.ID + "`",
			string(e.Type),
			truncateString(title, 40),
			strconv.Itoa(len(e.Children)),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"ID", "Type", "Title", "Children"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, e := range top {
		if len(e.Description) > 0 {
			md.Details(e.ID, e.Description[0])
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [docscrape](https://github.com/docscrape/docscrape)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
