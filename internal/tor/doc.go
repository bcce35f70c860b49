// Package tor provides an optional Tor transport for the account service.
//
// Fetching an account data report reveals, at minimum, that the account exists
// and when its owner asked for a copy. Users who do not want the service
// to see their network address can route the fetch through Tor, either via a
// Tor daemon they already run (external mode) or via a private daemon
// started for the duration of the command (embedded mode, using tornago).
//
// The package is designed to be used with dependency injection: Connect
// returns a Session whose HTTP client is handed to the remote package.
package tor
