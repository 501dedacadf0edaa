package resource

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a handle's value is not present in a manager's cache.
	// It signals a stale or foreign handle, not a condition worth retrying.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidKind is returned by FromRaw when the tag bits do not name a kind.
	ErrInvalidKind = errors.New("invalid resource kind")

	// ErrUnknownValue marks a descriptor string outside its closed set.
	ErrUnknownValue = errors.New("unknown value")

	// ErrMissingField marks a required descriptor field that is absent.
	ErrMissingField = errors.New("missing field")

	// ErrMalformed marks a descriptor that cannot be decoded.
	ErrMalformed = errors.New("malformed descriptor")

	// ErrUnsupported marks a well-formed value the core does not handle.
	ErrUnsupported = errors.New("unsupported")
)

// ConfigError reports a fatal problem in a declarative resource file.
// It names the file and the offending field so the author can fix the source.
type ConfigError struct {
	Path  string
	Field string
	Value string
	Err   error
}

// NewConfigError builds a ConfigError.
//
// Parameters:
//   - path: the descriptor file path
//   - field: the dotted field path inside the document
//   - value: the offending value, if any
//   - err: the cause, usually one of the package sentinels
//
// Returns:
//   - *ConfigError: the error
func NewConfigError(path, field, value string, err error) *ConfigError {
	return &ConfigError{Path: path, Field: field, Value: value, Err: err}
}

func (e *ConfigError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %s: %v %q", e.Path, e.Field, e.Err, e.Value)
	}
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NotFound wraps ErrNotFound with the handle that missed.
//
// Parameters:
//   - h: the handle that was not found
//
// Returns:
//   - error: an error matching ErrNotFound via errors.Is
func NotFound(h Handle) error {
	return fmt.Errorf("%w: %s", ErrNotFound, h)
}
