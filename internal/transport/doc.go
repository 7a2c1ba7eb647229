// Package transport builds the HTTP client ucomment talks to the remote service with.
//
// Both outbound call shapes (the bootstrap document GET and the continuation
// POST) go through the same resty client, so connection pooling, timeouts,
// default headers and the optional SOCKS5 proxy are configured in one place.
//
// The package is designed to be used with dependency injection: create a
// Client once and pass its Resty() client to the bootstrap and innertube
// packages rather than using global state.
package transport
