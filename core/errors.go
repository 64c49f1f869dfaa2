package core

import "github.com/pkg/errors"

// FieldError ties an error message to a named input field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries a rejected input. Fields is empty when the
// failure is not attributable to a single field.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdownError signals that the app's integrity is compromised and it
// should stop serving.
type shutdownError struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdownError{message: msg}
}

func (s shutdownError) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdownError)
	return ok
}
