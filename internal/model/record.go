package model

import "time"

// DownloadRecord is the single source of truth for "do we have a report".
// The document and its download time are always written and cleared together.
type DownloadRecord struct {
	// Document is the cached report.
	Document Document `json:"document"`

	// DownloadedAt is when the report was committed to the local store.
	DownloadedAt time.Time `json:"downloaded_at"`
}

// NewDownloadRecord creates a record for doc downloaded at t.
func NewDownloadRecord(doc Document, t time.Time) *DownloadRecord {
	return &DownloadRecord{
		Document:     doc,
		DownloadedAt: t,
	}
}
