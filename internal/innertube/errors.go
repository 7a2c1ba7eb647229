package innertube

import (
	"fmt"

	"github.com/nao1215/ucomment/internal/transport"
)

// ErrFetchFailed is re-exported so callers of this package do not need to
// import the transport package to match on it.
var ErrFetchFailed = transport.ErrFetchFailed

// StatusError reports a non-2xx response from the service.
type StatusError struct {
	StatusCode int
	Status     string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d (%s)", e.StatusCode, e.Status)
}

// Unwrap lets errors.Is match ErrFetchFailed.
func (e *StatusError) Unwrap() error {
	return ErrFetchFailed
}
