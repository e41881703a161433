package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/methodstatus/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
// Standard encoding/json is sufficient for these flat structures.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is recorded in the JSONReport wrapper.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the tool version in the output.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, labels model.Labels, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output, labels),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport wraps the report with its rendered tables and totals.
type JSONReport struct {
	// Version is the methodstatus version that generated this report.
	Version string `json:"version,omitempty"`

	// Report is the full status report.
	Report *model.StatusReport `json:"report"`

	// Summary holds the Status table column totals.
	Summary model.Summary `json:"summary"`

	// Tables holds both tables as rendered string cells.
	Tables []model.Table `json:"tables"`
}

// NewJSONReport creates a JSONReport wrapper.
func NewJSONReport(report *model.StatusReport, labels model.Labels, version string) *JSONReport {
	return &JSONReport{
		Version: version,
		Report:  report,
		Summary: report.Summary(),
		Tables:  report.Tables(labels),
	}
}

// Write outputs the full report wrapped with tables and totals.
func (w *JSONWriter) Write(report *model.StatusReport) (int, error) {
	return w.writeJSON(NewJSONReport(report, w.labels, w.version))
}

// WriteTable outputs a single table in JSON format.
func (w *JSONWriter) WriteTable(table model.Table) (int, error) {
	return w.writeJSON(table)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
