package model

import (
	"fmt"
	"strings"
)

// ExportFormat selects how the cached report is exported.
type ExportFormat int

const (
	// ExportFormatJSON exports the full document without the "text" member.
	ExportFormatJSON ExportFormat = iota

	// ExportFormatText exports only the preformatted "text" member.
	ExportFormatText
)

// Export MIME types and suggested file names.
const (
	MIMETypeJSON = "application/json"
	MIMETypeText = "text/plain"

	FileNameJSON = "account-data.json"
	FileNameText = "account-data.txt"
)

// String returns the lower-case name of the format.
func (f ExportFormat) String() string {
	switch f {
	case ExportFormatJSON:
		return "json"
	case ExportFormatText:
		return "text"
	default:
		return "unknown"
	}
}

// MIMEType returns the MIME type of artifacts produced in this format.
func (f ExportFormat) MIMEType() string {
	if f == ExportFormatText {
		return MIMETypeText
	}
	return MIMETypeJSON
}

// FileName returns the suggested file name for artifacts in this format.
func (f ExportFormat) FileName() string {
	if f == ExportFormatText {
		return FileNameText
	}
	return FileNameJSON
}

// ParseExportFormat parses "json", "text" or "txt" (case-insensitive).
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return ExportFormatJSON, nil
	case "text", "txt":
		return ExportFormatText, nil
	default:
		return ExportFormatJSON, fmt.Errorf("unknown export format %q (expected json or text)", s)
	}
}
