package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/methodstatus/internal/model"
	"github.com/olekukonko/tablewriter"
)

// SimpleWriter outputs human-readable text reports for terminal display.
// It uses plain ASCII tables without ANSI colors so output can be piped.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether tables without rows are shown.
	showEmpty bool

	// showSummary appends the column totals of the Status table.
	showSummary bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show tables without rows.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithSummary appends the released totals after the tables.
func WithSummary(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showSummary = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, labels model.Labels, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter:  newBaseWriter(output, labels),
		showEmpty:   true,
		showSummary: true,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.StatusReport) (int, error) {
	cw := &countingWriter{w: w.output}

	var sb strings.Builder
	w.writeHeader(&sb, report)
	if _, err := io.WriteString(cw, sb.String()); err != nil {
		return cw.n, err
	}

	for _, t := range report.Tables(w.labels) {
		if len(t.Rows) == 0 && !w.showEmpty {
			continue
		}
		if err := w.writeTable(cw, t); err != nil {
			return cw.n, err
		}
	}

	if w.showSummary {
		sb.Reset()
		w.writeSummary(&sb, report.Summary())
		if _, err := io.WriteString(cw, sb.String()); err != nil {
			return cw.n, err
		}
	}

	return cw.n, nil
}

// WriteTable outputs a single table.
func (w *SimpleWriter) WriteTable(table model.Table) (int, error) {
	cw := &countingWriter{w: w.output}
	err := w.writeTable(cw, table)
	return cw.n, err
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.StatusReport) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      METHOD STATUS REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Release:   %s\n", report.Release))
	sb.WriteString(fmt.Sprintf("Language:  %s\n", report.Language))
	if report.Source != "" {
		sb.WriteString(fmt.Sprintf("Source:    %s\n", report.Source))
	}
	if !report.GeneratedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Generated: %s\n", report.GeneratedAt.Format(timeLayout)))
	}
	sb.WriteString("\n")
}

// writeTable writes one titled table.
func (w *SimpleWriter) writeTable(out io.Writer, t model.Table) error {
	if _, err := fmt.Fprintf(out, "%s\n%s\n", strings.ToUpper(t.Title), strings.Repeat("-", 70)); err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header(cells(t.Header)...)
	if err := table.Bulk(t.Rows); err != nil {
		return fmt.Errorf("failed to render %s table: %w", t.Title, err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render %s table: %w", t.Title, err)
	}

	_, err := io.WriteString(out, "\n")
	return err
}

// writeSummary writes the released totals.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, s model.Summary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Solutions in release:   %d of %d\n", s.InScope, s.Solutions))
	sb.WriteString(fmt.Sprintf("  %-23s %d of %d\n", w.labels.WorkPackagesReleased+":", s.WorkPackagesReleased, s.WorkPackages))
	sb.WriteString(fmt.Sprintf("  %-23s %d of %d\n", w.labels.AssetsReleased+":", s.AssetsReleased, s.Assets))
	sb.WriteString("\n")
}

// cells converts header strings to tablewriter's variadic form.
func cells(header []string) []any {
	out := make([]any, len(header))
	for i, h := range header {
		out[i] = h
	}
	return out
}
