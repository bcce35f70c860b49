package model

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Artifact is the output of a single export request.
// It is produced fresh on every request and is never persisted; it only
// lives long enough to be handed to a blob sink.
type Artifact struct {
	// Data is the exported payload.
	Data []byte

	// MIMEType is either "application/json" or "text/plain".
	MIMEType string

	// FileName is the suggested file name for the payload.
	FileName string

	// Format is the export format that produced this artifact.
	Format ExportFormat
}

// NewArtifact creates an artifact for data in the given format.
func NewArtifact(data []byte, format ExportFormat) *Artifact {
	return &Artifact{
		Data:     data,
		MIMEType: format.MIMEType(),
		FileName: format.FileName(),
		Format:   format,
	}
}

// Size returns the payload length in bytes.
func (a *Artifact) Size() int {
	return len(a.Data)
}

// Checksum returns the hex-encoded SHA3-256 digest of the payload.
func (a *Artifact) Checksum() string {
	sum := sha3.Sum256(a.Data)
	return hex.EncodeToString(sum[:])
}
