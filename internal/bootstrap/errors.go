package bootstrap

import "errors"

// ErrTokenNotFound is returned when the page has no initial-data script, the
// payload cannot be decoded, or no engagement panel carries a token.
var ErrTokenNotFound = errors.New("no continuation token found in page")
