// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text tables for terminal display
//   - MarkdownWriter: GitHub Flavored Markdown with release charts
//   - JSONWriter: Structured JSON output for tool integration
//   - HTMLWriter: A standalone HTML page
//
// Report data structures live in the model package; writers only render
// them. Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
