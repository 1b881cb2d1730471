// Package errs defines the error taxonomy surfaced at the API boundary.
// Every failure in the query layer aborts the whole request; there is no
// partial-result mode and no retrying at this layer.
package errs

import (
	"errors"
	"fmt"
)

// NotFoundError means a referenced collective, transaction or result set
// does not exist.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// NotFound constructs a NotFoundError for the given resource and lookup key.
func NotFound(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

// UnauthorizedError means the caller lacks the required role on the target
// collective. The message deliberately does not reveal anything beyond the
// action that was denied.
type UnauthorizedError struct {
	Action string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("You don't have permission to %s", e.Action)
}

// Unauthorized constructs an UnauthorizedError for the denied action.
func Unauthorized(action string) error {
	return &UnauthorizedError{Action: action}
}

// ValidationError carries a machine-readable field path list next to the
// human message, so clients can highlight the offending argument.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validation constructs a ValidationError with the given field paths.
func Validation(message string, fields ...string) error {
	return &ValidationError{Fields: fields, Message: message}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsUnauthorized reports whether err is (or wraps) an UnauthorizedError.
func IsUnauthorized(err error) bool {
	var ua *UnauthorizedError
	return errors.As(err, &ua)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
