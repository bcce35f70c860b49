// Package blob provides an ephemeral, in-memory sink for export artifacts.
//
// An artifact is handed to a Provider, which returns a Handle (a locator
// string). The consumer of the artifact, such as a file writer or stdout,
// opens the handle exactly once. Handles belong to the session of the Provider
// that issued them and are useless in any other session.
package blob
