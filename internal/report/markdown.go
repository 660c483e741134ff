package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/nao1215/torctl/internal/history"
)

// MarkdownWriter outputs the renewal history in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent,
// type-safe markdown generation with tables and GitHub-flavored alerts.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write renders the renewal records as Markdown.
func (w *MarkdownWriter) Write(records []history.Record) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("torctl Renewal History")
	md.PlainText("")

	if len(records) == 0 {
		md.PlainText("No renewals recorded.")
		return len(md.String()), md.Build()
	}

	succeeded := 0
	for _, rec := range records {
		if rec.OK {
			succeeded++
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Renewals", strconv.Itoa(len(records))},
			{"Succeeded", strconv.Itoa(succeeded)},
			{"Failed", strconv.Itoa(len(records) - succeeded)},
			{"Most Recent", records[0].Timestamp.Format(timeFormat)},
		},
	})
	md.PlainText("")

	// Records arrive newest first; surface a failure of the latest attempt
	// prominently before the full table.
	if !records[0].OK {
		md.Warningf("The most recent renewal failed: %s", records[0].Message)
		md.PlainText("")
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.Timestamp.Format(timeFormat),
			resultText(rec),
			rec.Message,
		})
	}

	md.H2("Attempts")
	md.Table(markdown.TableSet{
		Header: []string{"Time", "Result", "Message"},
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}
