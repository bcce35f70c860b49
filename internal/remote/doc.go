// Package remote fetches account data reports from the account service.
//
// The client performs exactly one HTTP request per FetchReport call and has
// no local side effects; caching is the caller's business.
package remote
