package report

import (
	"fmt"
	"io"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/methodstatus/internal/model"
)

// MarkdownWriter outputs reports in GitHub Flavored Markdown.
// Released versus open counts are drawn as mermaid pie charts.
type MarkdownWriter struct {
	baseWriter

	// charts enables the mermaid pie charts.
	charts bool
}

// MarkdownWriterOption configures a MarkdownWriter.
type MarkdownWriterOption func(*MarkdownWriter)

// WithCharts enables or disables the mermaid pie charts.
func WithCharts(enabled bool) MarkdownWriterOption {
	return func(w *MarkdownWriter) {
		w.charts = enabled
	}
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, labels model.Labels, opts ...MarkdownWriterOption) *MarkdownWriter {
	w := &MarkdownWriter{
		baseWriter: newBaseWriter(output, labels),
		charts:     true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.StatusReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	summary := report.Summary()
	w.writeAlert(md, report.Release, summary)

	for _, t := range report.Tables(w.labels) {
		w.writeTable(md, t)
	}

	if w.charts {
		w.writeCharts(md, summary)
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteTable outputs a single table in Markdown format.
func (w *MarkdownWriter) WriteTable(table model.Table) (int, error) {
	md := markdown.NewMarkdown(w.output)
	w.writeTable(md, table)
	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.StatusReport) {
	md.H1("Method Status Report")
	md.PlainText("")

	rows := [][]string{
		{"Release", report.Release},
		{"Language", "`" + report.Language + "`"},
	}
	if report.Source != "" {
		rows = append(rows, []string{"Source", "`" + report.Source + "`"})
	}
	if !report.GeneratedAt.IsZero() {
		rows = append(rows, []string{"Generated", report.GeneratedAt.Format(timeLayout)})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeAlert summarizes release progress as a GitHub alert.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, release string, s model.Summary) {
	open := (s.WorkPackages - s.WorkPackagesReleased) + (s.Assets - s.AssetsReleased)
	switch {
	case s.InScope == 0:
		md.Warningf("No selected solution belongs to release %s.", release)
	case open == 0 && s.WorkPackages > 0:
		md.Tip("Every work package and asset of this release is released.")
	case open > 0:
		md.Note(fmt.Sprintf("%d of %d work packages and %d of %d assets are released.",
			s.WorkPackagesReleased, s.WorkPackages, s.AssetsReleased, s.Assets))
	default:
		md.Note("No work packages are planned for this release yet.")
	}
	md.PlainText("")
}

// writeTable writes one titled table.
func (w *MarkdownWriter) writeTable(md *markdown.Markdown, t model.Table) {
	md.H2(t.Title)
	md.PlainText("")

	if len(t.Rows) == 0 {
		md.PlainText("No solutions selected.")
		md.PlainText("")
		return
	}

	md.Table(markdown.TableSet{
		Header: t.Header,
		Rows:   t.Rows,
	})
	md.PlainText("")
}

// writeCharts writes one pie chart per counted element kind.
func (w *MarkdownWriter) writeCharts(md *markdown.Markdown, s model.Summary) {
	w.writePieChart(md, w.labels.WorkPackages, s.WorkPackagesReleased, s.WorkPackages)
	w.writePieChart(md, w.labels.Assets, s.AssetsReleased, s.Assets)
}

// writePieChart writes a mermaid pie chart of released versus open elements.
// Nothing is written when total is zero.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, title string, released, total int) {
	if total <= 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle(title),
		piechart.WithShowData(true),
	)
	if released > 0 {
		chart.LabelAndIntValue(model.Released, uint64(released))
	}
	if open := total - released; open > 0 {
		chart.LabelAndIntValue("open", uint64(open))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by methodstatus*")
}
