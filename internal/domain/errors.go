package domain

import (
	"errors"
	"fmt"
)

// Application error codes
const (
	EINVALID  = "invalid"   // Invalid input or configuration
	ENOTFOUND = "not_found" // Resource not found
	EINTERNAL = "internal"  // Internal error
	ENOTIMPL  = "not_impl"  // Operation not supported by this implementation
)

// =============================================================================
// Sentinel Errors
// =============================================================================

var (
	// ErrMissingDimensions is returned when neither width nor height is set
	// on a format that requires at least one of them.
	ErrMissingDimensions = errors.New("width or height parameter is missing")

	// ErrInvalidMode is returned when a resize mode is neither inset nor outbound.
	ErrInvalidMode = errors.New("invalid resize mode")

	// ErrResizerNotFound is returned when a format names a resizer id that
	// was never registered.
	ErrResizerNotFound = errors.New("resizer not found")

	// ErrMissingMediaID is returned when a URL or deferred generation is
	// requested for a media that has not been persisted yet.
	ErrMissingMediaID = errors.New("media has no id")

	// ErrUnsupportedOperation is returned by thumbnails that cannot serve the
	// requested operation, such as private URLs for static icons.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// =============================================================================
// Structured Error Type
// =============================================================================

// Error represents an application error with structured information.
type Error struct {
	Code    string // Machine-readable error code
	Op      string // Operation that failed (e.g., "resizer.simple.resize")
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf creates a new Error with the given code, operation, and formatted message.
func Errorf(code, op, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, code, op, message string) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// ErrorCode returns the code of the root error, or EINTERNAL if none.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the human-readable message of the error.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Code == EINTERNAL {
			return "An internal error occurred. Please try again later."
		}
		return e.Message
	}
	return "An internal error occurred. Please try again later."
}

// ErrorOp returns the operation of the root error, if any.
func ErrorOp(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// =============================================================================
// Convenience Constructors
// =============================================================================

// NotFound creates a not found error.
func NotFound(op, resource, id string) *Error {
	return &Error{
		Code:    ENOTFOUND,
		Op:      op,
		Message: fmt.Sprintf("%s with ID %q not found", resource, id),
	}
}

// Invalid creates a validation error.
func Invalid(op, message string) *Error {
	return &Error{
		Code:    EINVALID,
		Op:      op,
		Message: message,
	}
}

// Internal creates an internal error, wrapping the underlying error.
func Internal(err error, op, message string) *Error {
	return &Error{
		Code:    EINTERNAL,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// MissingDimensions creates an error for a format without width and height.
func MissingDimensions(op string) *Error {
	return Wrap(ErrMissingDimensions, EINVALID, op, ErrMissingDimensions.Error())
}

// InvalidMode creates an error for an unknown resize mode.
func InvalidMode(op string, mode ResizeMode) *Error {
	return Wrap(ErrInvalidMode, EINVALID, op, fmt.Sprintf("invalid resize mode %q", string(mode)))
}

// ResizerNotFound creates an error for an unregistered resizer id.
func ResizerNotFound(op, id string) *Error {
	return Wrap(ErrResizerNotFound, EINVALID, op, fmt.Sprintf("resizer %q is not registered", id))
}

// MissingMediaID creates an error for a media without a persisted id.
func MissingMediaID(op string) *Error {
	return Wrap(ErrMissingMediaID, EINVALID, op, "unable to generate path for a media without id")
}

// Unsupported creates an error for an operation a component cannot serve.
func Unsupported(op, message string) *Error {
	return Wrap(ErrUnsupportedOperation, ENOTIMPL, op, message)
}

// =============================================================================
// Helper Functions
// =============================================================================

// IsMissingDimensions reports whether err is a missing dimensions error.
func IsMissingDimensions(err error) bool { return errors.Is(err, ErrMissingDimensions) }

// IsInvalidMode reports whether err is an invalid mode error.
func IsInvalidMode(err error) bool { return errors.Is(err, ErrInvalidMode) }

// IsResizerNotFound reports whether err is a resizer lookup failure.
func IsResizerNotFound(err error) bool { return errors.Is(err, ErrResizerNotFound) }

// IsMissingMediaID reports whether err is a missing media id error.
func IsMissingMediaID(err error) bool { return errors.Is(err, ErrMissingMediaID) }

// IsUnsupported reports whether err is an unsupported operation error.
func IsUnsupported(err error) bool { return errors.Is(err, ErrUnsupportedOperation) }
