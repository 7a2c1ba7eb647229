package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoTarget is returned when no video id is specified.
	ErrNoTarget = errors.New("no video id specified")

	// ErrInvalidVideoID is returned when a video id contains characters
	// outside [A-Za-z0-9_-].
	ErrInvalidVideoID = errors.New("invalid video id: only letters, digits, '-' and '_' are allowed")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxPages is returned when the page limit is negative.
	// Use 0 for no limit.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrEmptyOutputDir is returned when the output directory is empty.
	ErrEmptyOutputDir = errors.New("output directory must not be empty")

	// ErrInvalidWatchURL is returned when the watch URL template does not
	// contain exactly one %s.
	ErrInvalidWatchURL = errors.New("invalid watch URL: must contain exactly one %s")

	// ErrInvalidAPIBaseURL is returned when the API base URL is not an
	// absolute http(s) URL.
	ErrInvalidAPIBaseURL = errors.New("invalid API base URL: must be an absolute http(s) URL")

	// ErrInvalidPrefixLength is returned when the payload prefix length is negative.
	ErrInvalidPrefixLength = errors.New("invalid prefix length: must be non-negative")
)
