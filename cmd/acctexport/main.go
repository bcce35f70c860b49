// Package main provides the entry point for the acctexport CLI.
//
// acctexport downloads your account data report from the account service,
// caches it locally, and exports it as JSON or plain text.
//
// Usage:
//
//	acctexport download
//	acctexport export --text -o report.txt
//	acctexport status
//	acctexport delete
//
// See --help for all available options.
package main

// main is the entry point for acctexport.
func main() {
	Execute()
}
