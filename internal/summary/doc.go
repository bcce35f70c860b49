// Package summary renders what is currently cached for the status command.
//
// Writers:
//   - SimpleWriter: plain text for terminals
//   - JSONWriter: structured output for scripts
//   - MarkdownWriter: tables and a composition chart for sharing
//
// All writers take a *Status built by NewStatus and never print report
// contents, only their shape.
package summary
