package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// GenericMessage is the only detail a client ever sees about an unexpected failure.
const GenericMessage = "An unexpected error occurred. Please try again."

// ErrStorage matches every error produced by the persistence layer.
var ErrStorage = stderrors.New("storage failure")

// Location names the part of the request an offending value was read from.
type Location string

const (
	LocationParams Location = "params"
	LocationQuery  Location = "query"
	LocationBody   Location = "body"
)

// FieldError describes one failed validation rule.
type FieldError struct {
	Message  string   `json:"message"`
	Value    any      `json:"value,omitempty"`
	Field    string   `json:"field,omitempty"`
	Location Location `json:"location,omitempty"`
}

// NewFieldError creates a field error without an offending value.
func NewFieldError(field, message string, loc Location) *FieldError {
	return &FieldError{
		Message:  message,
		Field:    field,
		Location: loc,
	}
}

// WithValue attaches the offending value to the error.
func (e *FieldError) WithValue(v any) *FieldError {
	e.Value = v
	return e
}

// Error implements the error interface
func (e *FieldError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationErrors is the accumulated result of a validator run.
// A non-empty list rejects the request.
type ValidationErrors []*FieldError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Err returns nil for an empty list so callers can return it directly.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// AsValidation extracts the validation errors carried by err, if any.
func AsValidation(err error) (ValidationErrors, bool) {
	var ve ValidationErrors
	if stderrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// StorageError wraps a failure returned by the database.
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError creates a new storage error for the named operation
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// Error implements the error interface
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

// Unwrap returns the wrapped error
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports ErrStorage as a match so callers need not know the concrete type.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}
