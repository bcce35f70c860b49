package summary

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter prints a Status as GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write prints the status.
func (w *MarkdownWriter) Write(status *Status) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Account Data Report")
	md.PlainText("")

	if !status.Downloaded {
		md.Note("No account data report is cached. Run `acctexport download` to fetch one.")
		return len(md.String()), md.Build()
	}

	rows := [][]string{
		{"Downloaded", status.DownloadedAt.Format(TimeLayout)},
		{"Size", strconv.Itoa(status.Size) + " bytes"},
	}
	if status.ReportID != "" {
		rows = append(rows, []string{"Report ID", "`" + status.ReportID + "`"})
	}
	if status.ReportTimestamp != "" {
		rows = append(rows, []string{"Generated", status.ReportTimestamp})
	}
	if status.StorePath != "" {
		rows = append(rows, []string{"Stored in", "`" + status.StorePath + "`"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if status.Malformed {
		md.Cautionf("The cached report is malformed and cannot be exported.")
		return len(md.String()), md.Build()
	}

	if !status.HasText {
		md.Warningf("The cached report has no text rendering; only JSON export is available.")
		md.PlainText("")
	}

	w.writeSections(md, status)

	return len(md.String()), md.Build()
}

// writeSections writes the top-level member table and a size chart.
func (w *MarkdownWriter) writeSections(md *markdown.Markdown, status *Status) {
	md.H2("Sections")
	md.PlainText("")

	if len(status.Fields) == 0 {
		md.PlainText("The report is empty.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(status.Fields))
	for i, f := range status.Fields {
		rows[i] = []string{"`" + f.Name + "`", strconv.Itoa(f.Size)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Member", "Bytes"},
		Rows:   rows,
	})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Report composition (bytes)"),
		piechart.WithShowData(true),
	)
	for _, f := range status.Fields {
		if f.Size > 0 {
			chart.LabelAndIntValue(f.Name, uint64(f.Size))
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}
