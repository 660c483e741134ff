package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrEmptyControlHost is returned when the ControlPort host is empty.
	ErrEmptyControlHost = errors.New("empty control host: specify the ControlPort host (e.g., localhost)")

	// ErrInvalidControlPort is returned when the ControlPort is outside the
	// valid TCP port range.
	ErrInvalidControlPort = errors.New("invalid control port: must be between 1 and 65535")

	// ErrInvalidTimeout is returned when a timeout is invalid.
	// The control timeout may be zero (no deadline) but not negative;
	// the fetch timeout must be positive.
	ErrInvalidTimeout = errors.New("invalid timeout: control timeout must be non-negative, fetch timeout must be positive")

	// ErrInvalidConcurrency is returned when the fetch concurrency is not
	// positive. A concurrency of zero would mean no fetching at all.
	ErrInvalidConcurrency = errors.New("invalid fetch concurrency: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// A negative body size is invalid; use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
