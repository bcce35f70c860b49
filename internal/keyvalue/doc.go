// Package keyvalue provides the persistent key-value storage that backs the
// report cache.
//
// Two implementations are provided:
//   - SQLite: a single-file database in the XDG data directory
//   - Memory: a process-local map for tests and throwaway runs
//
// Apply writes every entry of a Batch or none of them. The report store
// relies on this to keep the document and its download time together.
//
// Storage is always passed in explicitly. There is no package-level default
// instance, so callers can substitute a Memory store in tests.
package keyvalue
