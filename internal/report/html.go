package report

import (
	"io"

	"github.com/nao1215/methodstatus/internal/model"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLWriter outputs a standalone HTML page.
// The document is built as a node tree and serialized with html.Render,
// so cell text is always escaped.
type HTMLWriter struct {
	baseWriter

	// title is the page title.
	title string
}

// HTMLWriterOption configures an HTMLWriter.
type HTMLWriterOption func(*HTMLWriter)

// WithTitle sets the page title.
func WithTitle(title string) HTMLWriterOption {
	return func(w *HTMLWriter) {
		w.title = title
	}
}

// NewHTMLWriter creates an HTMLWriter that outputs to the given writer.
func NewHTMLWriter(output io.Writer, labels model.Labels, opts ...HTMLWriterOption) *HTMLWriter {
	w := &HTMLWriter{
		baseWriter: newBaseWriter(output, labels),
		title:      "Method Status Report",
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the full report as an HTML document.
func (w *HTMLWriter) Write(report *model.StatusReport) (int, error) {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html, html.Attribute{Key: "lang", Val: report.Language})
	doc.AppendChild(root)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, html.Attribute{Key: "charset", Val: "utf-8"}))
	head.AppendChild(withText(element(atom.Title), w.title))
	root.AppendChild(head)

	body := element(atom.Body)
	root.AppendChild(body)
	body.AppendChild(withText(element(atom.H1), w.title))

	info := element(atom.Dl, html.Attribute{Key: "class", Val: "run"})
	addTerm(info, "Release", report.Release)
	addTerm(info, "Language", report.Language)
	if report.Source != "" {
		addTerm(info, "Source", report.Source)
	}
	if !report.GeneratedAt.IsZero() {
		addTerm(info, "Generated", report.GeneratedAt.Format(timeLayout))
	}
	body.AppendChild(info)

	for _, t := range report.Tables(w.labels) {
		body.AppendChild(withText(element(atom.H2), t.Title))
		body.AppendChild(tableNode(t))
	}

	return w.render(doc)
}

// WriteTable outputs a single table as an HTML fragment.
func (w *HTMLWriter) WriteTable(table model.Table) (int, error) {
	return w.render(tableNode(table))
}

// render serializes n to the output.
func (w *HTMLWriter) render(n *html.Node) (int, error) {
	cw := &countingWriter{w: w.output}
	if err := html.Render(cw, n); err != nil {
		return cw.n, err
	}
	_, err := io.WriteString(cw, "\n")
	return cw.n, err
}

// tableNode builds a <table> with a header row and one row per entry.
func tableNode(t model.Table) *html.Node {
	table := element(atom.Table, html.Attribute{Key: "class", Val: "status"})
	table.AppendChild(withText(element(atom.Caption), t.Title))

	thead := element(atom.Thead)
	hr := element(atom.Tr)
	for _, h := range t.Header {
		hr.AppendChild(withText(element(atom.Th), h))
	}
	thead.AppendChild(hr)
	table.AppendChild(thead)

	tbody := element(atom.Tbody)
	for _, row := range t.Rows {
		tr := element(atom.Tr)
		for _, cell := range row {
			tr.AppendChild(withText(element(atom.Td), cell))
		}
		tbody.AppendChild(tr)
	}
	table.AppendChild(tbody)
	return table
}

// addTerm appends a <dt>/<dd> pair.
func addTerm(dl *html.Node, term, desc string) {
	dl.AppendChild(withText(element(atom.Dt), term))
	dl.AppendChild(withText(element(atom.Dd), desc))
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func withText(n *html.Node, text string) *html.Node {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}
