package config

import "errors"

// Configuration validation errors returned by Config.Validate and
// Config.ValidateServer.
var (
	// ErrNoServerURL is returned when a command needs the account service
	// but no server URL is configured.
	ErrNoServerURL = errors.New("no account server configured: set server.url in the config file or use --server")

	// ErrInvalidServerURL is returned when the server URL is not an absolute
	// http or https URL.
	ErrInvalidServerURL = errors.New("invalid server URL: must be an absolute http(s) URL")

	// ErrInsecureServerURL is returned when credentials would be sent over
	// plain http to a non-loopback host.
	ErrInsecureServerURL = errors.New("refusing to send credentials over plain http to a remote host")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrConflictingExportFormats is returned when both --json and --text
	// are given to export.
	ErrConflictingExportFormats = errors.New("conflicting export formats: --json and --text cannot be used together")

	// ErrConflictingStatusFormats is returned when both --json and
	// --markdown are given to status.
	ErrConflictingStatusFormats = errors.New("conflicting status formats: --json and --markdown cannot be used together")

	// ErrConflictingOutputs is returned when --output and --stdout are both set.
	ErrConflictingOutputs = errors.New("conflicting outputs: --output and --stdout cannot be used together")

	// ErrInvalidTorMode is returned for a tor.mode other than off, external
	// or embedded.
	ErrInvalidTorMode = errors.New("invalid tor mode: must be off, external or embedded")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Zero selects the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
