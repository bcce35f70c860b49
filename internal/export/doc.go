// Package export turns a cached account data report into a downloadable
// artifact.
//
// Two formats are supported:
//   - text: the report's preformatted "text" member, verbatim
//   - json: the full report minus the "text" member, compacted
//
// Design decision: The JSON transform streams the top-level object with
// encoding/json's tokenizer instead of decoding into a map. A map would
// reorder the members; the service's member order and nesting must survive
// the export untouched, so only the top-level "text" member is dropped and
// every other value is copied as raw JSON.
package export
