package transport

import "errors"

var (
	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	// Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrFetchFailed is wrapped by every transport, HTTP status or decode
	// failure on an outbound request. It is fatal to the crawl: there are no
	// retries at this layer.
	ErrFetchFailed = errors.New("fetch failed")
)
