package report

import (
	"io"

	"github.com/nao1215/torctl/internal/history"
)

// Writer defines the interface for history report output.
// Implementations render renewal records in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write renders the records to the configured destination.
	// Records are expected newest first, as history.DB.Recent returns
	// them. Returns the number of bytes written and any error.
	Write(records []history.Record) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// timeFormat is the timestamp layout used by all report writers.
const timeFormat = "2006-01-02 15:04:05 MST"

// resultText returns the fixed result label for a record.
func resultText(rec history.Record) string {
	if rec.OK {
		return "success"
	}
	return "FAILED"
}
