package crawler

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedNode is matched by every MalformedNodeError.
	ErrMalformedNode = errors.New("malformed node")

	// ErrPageLimit is returned when the walk reaches its page limit.
	ErrPageLimit = errors.New("page limit reached")
)

// MalformedNodeError describes a node that could not be decoded.
type MalformedNodeError struct {
	// Index is the node's position in its page.
	Index int
	// Page is the fingerprint of the token the page was fetched with.
	Page string
	// Err is the decode error.
	Err error
}

// Error implements the error interface.
func (e *MalformedNodeError) Error() string {
	return fmt.Sprintf("malformed node %d on page %s: %v", e.Index, e.Page, e.Err)
}

// Unwrap returns the decode error.
func (e *MalformedNodeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrMalformedNode.
func (e *MalformedNodeError) Is(target error) bool {
	return target == ErrMalformedNode
}
