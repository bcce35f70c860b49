package remote

import "errors"

// ErrIO is wrapped by every FetchReport failure: transport errors,
// unexpected status codes, oversized bodies and bodies that are not a JSON
// object alike. Callers only need errors.Is(err, ErrIO).
var ErrIO = errors.New("account data report fetch failed")

// ErrInvalidServerURL is returned by NewClient for an unusable base URL.
var ErrInvalidServerURL = errors.New("invalid account server URL")

// StatusError describes a non-2xx response. It unwraps to ErrIO.
type StatusError struct {
	StatusCode int
	Status     string
}

// Error implements error.
func (e *StatusError) Error() string {
	return "account service responded " + e.Status
}

// Unwrap returns ErrIO.
func (e *StatusError) Unwrap() error {
	return ErrIO
}
