package summary

import (
	"time"

	"github.com/nao1215/acctexport/internal/export"
	"github.com/nao1215/acctexport/internal/model"
)

// Status is the summary of the cached report.
//
// Design decision: We build one Status up front and hand it to every
// writer instead of letting writers read the store. The report can hold
// personal data, so Status carries only sizes, identifiers and member
// names; a writer cannot print report contents because it never sees
// them. A report whose members cannot be listed is still summarized, with
// Malformed set, so status stays useful when export would fail.
type Status struct {
	// Downloaded is false when nothing is cached; the remaining fields are
	// then zero.
	Downloaded bool `json:"downloaded"`

	// DownloadedAt is when the report was fetched.
	DownloadedAt *time.Time `json:"downloaded_at,omitempty"`

	// ReportID and ReportTimestamp are copied from the document, if present.
	ReportID        string `json:"report_id,omitempty"`
	ReportTimestamp string `json:"report_timestamp,omitempty"`

	// Size is the document length in bytes.
	Size int `json:"size"`

	// HasText reports whether a text export is possible.
	HasText bool `json:"has_text"`

	// Fields lists the top-level members in document order.
	Fields []export.Field `json:"fields,omitempty"`

	// Malformed is set when the cached document cannot be parsed.
	Malformed bool `json:"malformed,omitempty"`

	// StorePath is the database file holding the cache, when known.
	StorePath string `json:"store_path,omitempty"`
}

// Option configures NewStatus.
type Option func(*Status)

// WithStorePath records where the cache lives.
func WithStorePath(path string) Option {
	return func(s *Status) {
		s.StorePath = path
	}
}

// NewStatus summarizes rec. A nil record yields a not-downloaded status.
func NewStatus(rec *model.DownloadRecord, opts ...Option) *Status {
	s := &Status{}
	for _, opt := range opts {
		opt(s)
	}
	if rec == nil {
		return s
	}

	at := rec.DownloadedAt
	s.Downloaded = true
	s.DownloadedAt = &at
	s.Size = len(rec.Document)
	s.ReportID = rec.Document.ReportID()
	s.ReportTimestamp = rec.Document.ReportTimestamp()

	fields, err := export.Outline(rec.Document)
	if err != nil {
		s.Malformed = true
		return s
	}
	s.Fields = fields
	if _, err := export.ExtractText(rec.Document); err == nil {
		s.HasText = true
	}
	return s
}
