package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/torctl/internal/history"
)

// SimpleWriter outputs human-readable text reports.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because it works in all terminals and pipes cleanly to
// files and other tools.
type SimpleWriter struct {
	baseWriter

	// verbose enables the raw ControlPort reply in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output including raw ControlPort replies.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write renders the renewal records as plain text.
func (w *SimpleWriter) Write(records []history.Record) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      TORCTL RENEWAL HISTORY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	if len(records) == 0 {
		sb.WriteString("No renewals recorded.\n")
		return w.output.Write([]byte(sb.String()))
	}

	succeeded := 0
	for _, rec := range records {
		if rec.OK {
			succeeded++
		}
	}
	sb.WriteString(fmt.Sprintf("Renewals: %d (%d succeeded, %d failed)\n\n",
		len(records), succeeded, len(records)-succeeded))

	for _, rec := range records {
		sb.WriteString(fmt.Sprintf("%s  %-7s  %s\n",
			rec.Timestamp.Format(timeFormat), resultText(rec), rec.Message))
		if w.verbose && rec.RawReply != "" {
			for _, line := range strings.Split(strings.TrimRight(rec.RawReply, "\n"), "\n") {
				sb.WriteString("    | " + line + "\n")
			}
		}
	}

	return w.output.Write([]byte(sb.String()))
}
