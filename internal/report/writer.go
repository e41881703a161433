package report

import (
	"io"

	"github.com/nao1215/methodstatus/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.StatusReport) (int, error)

	// WriteTable outputs a single table without report metadata.
	WriteTable(table model.Table) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// Our Writer writes reports rather than raw bytes, so io.MultiWriter
// does not apply.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.StatusReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteTable outputs the table to all configured Writers.
func (m *MultiWriter) WriteTable(table model.Table) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteTable(table)
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

	// labels are the table header cells, defaults filled in.
	labels model.Labels
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer, labels model.Labels) baseWriter {
	return baseWriter{output: output, labels: labels.Merge(model.DefaultLabels())}
}

// timeLayout is used for GeneratedAt in every human-readable format.
const timeLayout = "2006-01-02 15:04:05 MST"

// countingWriter counts bytes passed through to w.
type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
