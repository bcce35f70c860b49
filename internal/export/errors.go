package export

import "errors"

// Export errors.
var (
	// ErrNoReportAvailable is returned when an export is requested but no
	// report is cached. Callers should gate exports on a downloaded report.
	ErrNoReportAvailable = errors.New("no account data report available")

	// ErrMalformedReport is returned when the cached report does not have
	// the expected shape: it is not a JSON object, or text export was
	// requested and the "text" member is missing or not a string.
	ErrMalformedReport = errors.New("malformed account data report")
)
