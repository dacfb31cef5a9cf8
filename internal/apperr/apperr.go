// Package apperr defines the error taxonomy shared by services and handlers.
// Services return these; handlers translate them to HTTP statuses without
// leaking store internals.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the target document, location or entry does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicateBilling indicates the source transaction is already billed/invoiced.
	ErrDuplicateBilling = errors.New("source transaction already billed")
	// ErrDuplicateLocation indicates a stock location already exists for the
	// (item, store, project) triple.
	ErrDuplicateLocation = errors.New("stock location already exists for item, store and project")
	// ErrSourceNotApproved indicates the billing source has not cleared every
	// approval stage.
	ErrSourceNotApproved = errors.New("source transaction is not fully approved")
)

// ValidationError reports a malformed or missing input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation builds a ValidationError for a field.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ReferenceError reports a foreign key that does not resolve to an existing row.
type ReferenceError struct {
	Field string
	Value string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: no such reference %q", e.Field, e.Value)
}

// Reference builds a ReferenceError for a field and the offending value.
func Reference(field, value string) error {
	return &ReferenceError{Field: field, Value: value}
}

// IsBadInput reports whether err is a validation or reference failure, i.e.
// something the caller can fix by correcting the request.
func IsBadInput(err error) bool {
	var ve *ValidationError
	var re *ReferenceError
	return errors.As(err, &ve) || errors.As(err, &re)
}
