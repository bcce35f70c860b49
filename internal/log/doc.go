// Package log provides an slog handler that masks credentials and account
// identifiers before they reach the log output.
//
// Account data reports are personal data and the account service is
// addressed with the user's phone number and password, so even debug logs
// must never carry them. SecureHandler masks:
//   - HTTP auth headers (Authorization, Cookie, Proxy-Authorization)
//   - credentials (password, token, secret and similar keys)
//   - account identifiers (phone number, username, e164, aci, pni)
//   - values that look like JWTs, bearer or basic credentials, or E.164
//     phone numbers, whatever their key
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("requesting report", "username", "+15555550123") // username=***REDACTED***
//
// The logger can also be handed to tornago, which logs through slog.
package log
