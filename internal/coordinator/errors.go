package coordinator

import "errors"

// Coordinator errors.
var (
	// ErrClosed is returned by every method once Close has been called.
	ErrClosed = errors.New("coordinator is closed")

	// ErrNoClient is returned by OnDownloadReport when the coordinator was
	// built without a ReportClient, as offline commands do.
	ErrNoClient = errors.New("no report client configured")
)
