// Package store provides the report cache: the single source of truth for
// whether an account data report has been downloaded.
//
// The cache lives in a keyvalue.Storage under two keys, the document and its
// download time. Both are written in one batch and cleared in one batch, so
// a reader never sees one without the other.
package store
