package summary

import (
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// TimeLayout is the timestamp layout used by the text and Markdown writers.
const TimeLayout = "2006-01-02 15:04:05 MST"

// SimpleWriter prints a Status as plain text.
type SimpleWriter struct {
	baseWriter

	printer  *message.Printer
	location *time.Location
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithLanguage sets the language used for number formatting.
func WithLanguage(tag language.Tag) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.printer = message.NewPrinter(tag)
	}
}

// WithLocation sets the time zone timestamps are shown in.
func WithLocation(loc *time.Location) SimpleWriterOption {
	return func(w *SimpleWriter) {
		if loc != nil {
			w.location = loc
		}
	}
}

// NewSimpleWriter creates a SimpleWriter.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.English),
		location:   time.Local,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write prints the status.
func (w *SimpleWriter) Write(status *Status) (int, error) {
	var sb strings.Builder

	if !status.Downloaded {
		sb.WriteString("No account data report is cached.\n")
		sb.WriteString("Run 'acctexport download' to fetch one.\n")
		return io.WriteString(w.output, sb.String())
	}

	w.line(&sb, "Downloaded", status.DownloadedAt.In(w.location).Format(TimeLayout))
	if status.ReportID != "" {
		w.line(&sb, "Report ID", status.ReportID)
	}
	if status.ReportTimestamp != "" {
		w.line(&sb, "Generated", status.ReportTimestamp)
	}
	w.line(&sb, "Size", w.printer.Sprintf("%d bytes", status.Size))
	if status.StorePath != "" {
		w.line(&sb, "Stored in", status.StorePath)
	}

	if status.Malformed {
		sb.WriteString("\nThe cached report is malformed and cannot be exported.\n")
		return io.WriteString(w.output, sb.String())
	}

	formats := "json"
	if status.HasText {
		formats = "json, text"
	}
	w.line(&sb, "Formats", formats)

	if len(status.Fields) > 0 {
		sb.WriteString("\nSections:\n")
		for _, f := range status.Fields {
			sb.WriteString(w.printer.Sprintf("  %-24s %10d bytes\n", f.Name, f.Size))
		}
	}

	return io.WriteString(w.output, sb.String())
}

// line writes an aligned "Label: value" line.
func (w *SimpleWriter) line(sb *strings.Builder, label, value string) {
	sb.WriteString(w.printer.Sprintf("%-12s %s\n", label+":", value))
}
