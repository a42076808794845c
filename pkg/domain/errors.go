package domain

import (
	"errors"
)

// Error kinds. Every error that leaves the service layer matches exactly one
// of these with errors.Is; the transport maps them to response codes.
var (
	// ErrValidation is returned when caller-supplied input violates a precondition.
	ErrValidation = errors.New("validation error")
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrBusinessRule is returned when a business rule blocks the operation.
	ErrBusinessRule = errors.New("business rule violation")
	// ErrStorage is returned when the persistence layer is unavailable or failed.
	ErrStorage = errors.New("storage error")
)

// ErrAlreadyExists is returned when a unique key is already taken.
var ErrAlreadyExists = NewBusinessError("resource already exists")

// Error is a classified domain error. It unwraps to its kind and, when set,
// to the underlying cause.
type Error struct {
	kind  error
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

// Kind returns the kind sentinel of the error.
func (e *Error) Kind() error { return e.kind }

// NewValidationError returns an error of kind ErrValidation.
func NewValidationError(msg string) *Error {
	return &Error{kind: ErrValidation, msg: msg}
}

// NewNotFoundError returns an error of kind ErrNotFound.
func NewNotFoundError(msg string) *Error {
	return &Error{kind: ErrNotFound, msg: msg}
}

// NewBusinessError returns an error of kind ErrBusinessRule.
func NewBusinessError(msg string) *Error {
	return &Error{kind: ErrBusinessRule, msg: msg}
}

// NewStorageError classifies cause as a storage failure. Errors that are
// already classified are returned as they are, and nil stays nil.
func NewStorageError(cause error) error {
	if cause == nil {
		return nil
	}
	if KindOf(cause) != nil {
		return cause
	}
	return &Error{kind: ErrStorage, msg: "storage failure", cause: cause}
}

// KindOf returns the kind sentinel err matches, or nil when err is unclassified.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrBusinessRule, ErrStorage} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
