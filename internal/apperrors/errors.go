package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found, or is not
// visible under the caller's authorizations. Callers must not be able to tell
// the two cases apart.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrForbidden indicates that the acting user lacks the required access level.
var ErrForbidden = errors.New("access denied")

// ErrUnauthorized indicates that the caller could not be authenticated.
var ErrUnauthorized = errors.New("unauthorized")

// AccessDeniedError is returned when a workspace-mutating operation is attempted
// by a user without sufficient access. It always carries the acting user and the
// resource the access check failed on, so handlers can produce an actionable
// message. It unwraps to ErrForbidden.
type AccessDeniedError struct {
	UserID     string
	ResourceID string
	Message    string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("user %s does not have access to %s: %s", e.UserID, e.ResourceID, e.Message)
}

func (e *AccessDeniedError) Unwrap() error {
	return ErrForbidden
}

// NewAccessDeniedError creates an AccessDeniedError for the given user and resource.
func NewAccessDeniedError(userID, resourceID, message string) *AccessDeniedError {
	return &AccessDeniedError{UserID: userID, ResourceID: resourceID, Message: message}
}

// EncodingError is returned when a visibility label cannot be constructed, for
// example from a blank workspace id. It is fatal to the enclosing operation:
// continuing could silently produce a public label where a sandboxed one was
// intended. It unwraps to ErrValidation.
type EncodingError struct {
	Message string
}

func (e *EncodingError) Error() string {
	return "visibility encoding error: " + e.Message
}

func (e *EncodingError) Unwrap() error {
	return ErrValidation
}

// NewEncodingError creates an EncodingError with the given message.
func NewEncodingError(message string) *EncodingError {
	return &EncodingError{Message: message}
}

// AppError wraps an unexpected lower-level failure with an HTTP-ish status code
// and a message suitable for logging.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an error that unwraps to ErrNotFound with extra context.
func NewNotFoundError(message string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, message)
}

// NewValidationFailedError creates an error that unwraps to ErrValidation with extra context.
func NewValidationFailedError(message string) error {
	return fmt.Errorf("%w: %s", ErrValidation, message)
}

// NewConflictError creates an error that unwraps to ErrDuplicate with extra context.
func NewConflictError(message string) error {
	return fmt.Errorf("%w: %s", ErrDuplicate, message)
}
