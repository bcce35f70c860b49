// Package model defines the core data structures used throughout acctexport.
//
// This package contains the following main types:
//   - Document: The raw account data report as returned by the account service
//   - DownloadRecord: A cached Document together with its download time
//   - Artifact: A one-time export payload with MIME type and file name
//   - UIState: The read-only snapshot published by the export coordinator
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The store, export, coordinator and summary packages all need
// these types, so centralizing them prevents import cycles.
package model
