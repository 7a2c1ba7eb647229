// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// Continuation tokens, visitor data and cookies identify a browsing session
// with the remote service. They show up in debug output constantly, so the
// SecureHandler masks them by attribute key and by value shape:
//   - keys such as continuation, cookie, visitor_data, authorization
//   - values that look like continuation tokens, API keys or consent cookies
//
// Even in verbose mode, these values are masked so that logs can be shared.
// Components log the token fingerprint instead when they need to correlate
// pages.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//	logger.Debug("page fetched",
//	    "continuation", token, // masked
//	    "fingerprint", token.Fingerprint(),
//	)
//	slog.SetDefault(logger)
package log
