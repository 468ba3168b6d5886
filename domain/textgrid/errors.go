package textgrid

import (
	"errors"
	"fmt"
)

// ErrTierNotFound indicates a requested tier name does not occur in the file.
var ErrTierNotFound = errors.New("tier not found")

// ErrNotTextGrid indicates the first line lacks the ooTextFile marker.
// It matches ErrTierNotFound because no tier can be found in such a file.
var ErrNotTextGrid = fmt.Errorf("%w: missing %s header", ErrTierNotFound, headerMarker)

// ErrTierNameRequired indicates an empty tier name was requested.
var ErrTierNameRequired = errors.New("both tier names are required")

// ErrEncoding indicates the file bytes could not be decoded as text.
var ErrEncoding = errors.New("unsupported text encoding")

// MalformedRecordError describes a record that was dropped because one of its
// fields could not be read. It is never fatal.
type MalformedRecordError struct {
	Line  int
	Tier  string
	Field string
	Value string
	Err   error
}

// Error implements error.
func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("line %d: tier %q: malformed %s %q: %v", e.Line, e.Tier, e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *MalformedRecordError) Unwrap() error { return e.Err }

// MissingTierError reports a declared tier whose item marker was not found
// where expected. The tier is skipped.
type MissingTierError struct {
	Line  int
	Index int
	Got   string
}

// Error implements error.
func (e *MissingTierError) Error() string {
	return fmt.Sprintf("line %d: expected item [%d]:, got %q", e.Line, e.Index, e.Got)
}

// User-facing messages.
const (
	MessageTierError        = "Did you provide the correct tiers?"
	MessageProvideBothTiers = "Provide both tier names!"
	MessageWrongFileType    = "File format is not supported!"
	MessageUnhandledError   = "Unhandled error!"
)

// Message maps a parse error to the message shown to users.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotTextGrid), errors.Is(err, ErrEncoding):
		return MessageWrongFileType
	case errors.Is(err, ErrTierNotFound):
		return MessageTierError
	case errors.Is(err, ErrTierNameRequired):
		return MessageProvideBothTiers
	default:
		return MessageUnhandledError
	}
}
